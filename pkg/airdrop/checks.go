package airdrop

import (
	"bytes"
	"crypto/ed25519"
	"strings"

	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

// CheckRewardAccount verifies that the pool is the authority over its reward
// token account, and that the account holds the reward mint.
func CheckRewardAccount(rewardAccount *token.Account, pool, rewardMint ed25519.PublicKey) error {
	if !bytes.Equal(rewardAccount.Owner, pool) {
		return nft_airdrop.ErrInvalidTokenAccount
	}
	if !bytes.Equal(rewardAccount.Mint, rewardMint) {
		return nft_airdrop.ErrInvalidTokenAccount
	}
	return nil
}

// CheckNftMint verifies the mint describes a single, indivisible token.
func CheckNftMint(mint *token.Mint) error {
	if mint.Decimals != 0 || mint.Supply != 1 {
		return nft_airdrop.ErrInvalidTokenMint
	}
	return nil
}

// CheckNftHolding verifies the claimant holds the NFT in account.
func CheckNftHolding(account *token.Account, nftMint, claimant ed25519.PublicKey) error {
	if !bytes.Equal(account.Mint, nftMint) {
		return nft_airdrop.ErrInvalidTokenAccount
	}
	if !bytes.Equal(account.Owner, claimant) || account.Amount != 1 {
		return nft_airdrop.ErrInvalidTokenAccount
	}
	return nil
}

// CheckMetadata verifies the metadata describes nftMint, and that the NFT
// belongs to the pool's collection. Symbols are compared without their NUL
// padding.
func CheckMetadata(md *metadata.Metadata, nftMint ed25519.PublicKey, collection string) error {
	if !bytes.Equal(md.Mint, nftMint) {
		return nft_airdrop.ErrInvalidMetadata
	}
	if md.TrimmedSymbol() != strings.TrimRight(collection, "\x00") {
		return nft_airdrop.ErrInvalidMetadata
	}
	return nil
}

// CheckTokenSource verifies tokens are only ever moved out of the pool's own
// reward account.
func CheckTokenSource(tokenFrom ed25519.PublicKey, pool *nft_airdrop.PoolAccount) error {
	if !bytes.Equal(tokenFrom, pool.RewardAccount) {
		return nft_airdrop.ErrInvalidTokenAccount
	}
	return nil
}
