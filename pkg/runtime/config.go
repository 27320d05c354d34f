package runtime

import (
	"github.com/code-payments/nft-airdrop/pkg/config"
	"github.com/code-payments/nft-airdrop/pkg/config/env"
	"github.com/code-payments/nft-airdrop/pkg/config/memory"
	"github.com/code-payments/nft-airdrop/pkg/solana"
)

const (
	envConfigPrefix = "RUNTIME_"

	VerifySignaturesConfigEnvName = envConfigPrefix + "VERIFY_SIGNATURES"
	defaultVerifySignatures       = true

	MaxInstructionsConfigEnvName = envConfigPrefix + "MAX_INSTRUCTIONS"
	defaultMaxInstructions       = 32

	MaxTransactionSizeConfigEnvName = envConfigPrefix + "MAX_TRANSACTION_SIZE"
	defaultMaxTransactionSize       = solana.MaxTransactionSize
)

type conf struct {
	verifySignatures   config.Bool
	maxInstructions    config.Uint64
	maxTransactionSize config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			verifySignatures:   env.NewBoolConfig(VerifySignaturesConfigEnvName, defaultVerifySignatures),
			maxInstructions:    env.NewUint64Config(MaxInstructionsConfigEnvName, defaultMaxInstructions),
			maxTransactionSize: env.NewUint64Config(MaxTransactionSizeConfigEnvName, defaultMaxTransactionSize),
		}
	}
}

type testOverrides struct {
	verifySignatures bool
	maxInstructions  uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			verifySignatures:   memory.NewBoolConfig(overrides.verifySignatures),
			maxInstructions:    memory.NewUint64Config(overrides.maxInstructions),
			maxTransactionSize: memory.NewUint64Config(defaultMaxTransactionSize),
		}
	}
}
