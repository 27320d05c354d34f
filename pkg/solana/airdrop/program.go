package nft_airdrop

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")

	ErrDiscriminatorMismatch = errors.New("account discriminator mismatch")
	ErrAccountTooLarge       = errors.New("account data exceeds allocated space")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("AiAK8Z8eBPmtH9uGVawmZCvyYhnkmngsuvQEJAPV8Rdf")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(system.ProgramKey[:])
	SPL_TOKEN_PROGRAM_ID = token.ProgramKey
	METADATA_PROGRAM_ID  = metadata.ProgramKey

	SYSVAR_CLOCK_PUBKEY = system.ClockSysVar
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
