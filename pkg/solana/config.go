package solana

import (
	"strings"

	"github.com/pkg/errors"
)

type Environment string

const (
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
)

// EnvironmentFromName maps a cluster moniker to its public RPC endpoint. Anything
// that looks like a URL is passed through unchanged.
func EnvironmentFromName(name string) (Environment, error) {
	switch name {
	case "", "devnet", "dev":
		return EnvironmentDev, nil
	case "testnet", "test":
		return EnvironmentTest, nil
	case "mainnet", "mainnet-beta", "prod":
		return EnvironmentProd, nil
	case "localnet", "local":
		return EnvironmentLocal, nil
	}

	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return Environment(name), nil
	}

	return "", errors.Errorf("unknown environment: %s", name)
}
