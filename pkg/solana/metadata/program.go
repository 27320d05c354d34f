package metadata

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

// ProgramKey is the address of the token metadata program.
//
// Current key: metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s
var ProgramKey ed25519.PublicKey

func init() {
	var err error

	ProgramKey, err = base58.Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	if err != nil {
		panic(err)
	}
}

const metadataPrefix = "metadata"

// GetMetadataAddress returns the canonical metadata account for a mint.
//
// Reference: https://github.com/metaplex-foundation/metaplex-program-library/blob/4cbd3d4ba4fcd0b5e2fb9e6ecb8171285c5791a4/token-metadata/program/src/utils.rs#L411
func GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		ProgramKey,
		[]byte(metadataPrefix),
		ProgramKey,
		mint,
	)
}
