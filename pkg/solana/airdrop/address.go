package nft_airdrop

import (
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

type GetPoolAddressArgs struct {
	Rand ed25519.PublicKey
}

// GetPoolAddress derives the pool record, which is also the authority over the
// pool's reward token account.
func GetPoolAddress(args *GetPoolAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		args.Rand,
	)
}

type GetNftDataAddressArgs struct {
	NftMint ed25519.PublicKey
	Pool    ed25519.PublicKey
}

// GetNftDataAddress derives the claim record of an NFT within a pool.
func GetNftDataAddress(args *GetNftDataAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		args.NftMint,
		args.Pool,
	)
}

// PoolSignerSeeds are the seeds the program signs with on behalf of the pool.
func PoolSignerSeeds(rand ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{rand, {bump}}
}

// NftDataSeeds are the seeds of a claim record, including its bump.
func NftDataSeeds(nftMint, pool ed25519.PublicKey, bump uint8) [][]byte {
	return [][]byte{nftMint, pool, {bump}}
}
