package airdrop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	nft_airdrop "github.com/code-payments/nft-airdrop/pkg/solana/airdrop"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
	"github.com/code-payments/nft-airdrop/pkg/testutil"
)

func TestCheckRewardAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	pool, mint, other := keys[0], keys[1], keys[2]

	assert.NoError(t, CheckRewardAccount(&token.Account{Owner: pool, Mint: mint}, pool, mint))
	assert.Equal(t, nft_airdrop.ErrInvalidTokenAccount, CheckRewardAccount(&token.Account{Owner: other, Mint: mint}, pool, mint))
	assert.Equal(t, nft_airdrop.ErrInvalidTokenAccount, CheckRewardAccount(&token.Account{Owner: pool, Mint: other}, pool, mint))
}

func TestCheckNftMint(t *testing.T) {
	assert.NoError(t, CheckNftMint(&token.Mint{Decimals: 0, Supply: 1}))
	assert.Equal(t, nft_airdrop.ErrInvalidTokenMint, CheckNftMint(&token.Mint{Decimals: 1, Supply: 1}))
	assert.Equal(t, nft_airdrop.ErrInvalidTokenMint, CheckNftMint(&token.Mint{Decimals: 0, Supply: 2}))
	assert.Equal(t, nft_airdrop.ErrInvalidTokenMint, CheckNftMint(&token.Mint{Decimals: 0, Supply: 0}))
}

func TestCheckNftHolding(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	mint, holder, other := keys[0], keys[1], keys[2]

	assert.NoError(t, CheckNftHolding(&token.Account{Mint: mint, Owner: holder, Amount: 1}, mint, holder))

	for _, account := range []*token.Account{
		{Mint: other, Owner: holder, Amount: 1},
		{Mint: mint, Owner: other, Amount: 1},
		{Mint: mint, Owner: holder, Amount: 0},
		{Mint: mint, Owner: holder, Amount: 2},
	} {
		assert.Equal(t, nft_airdrop.ErrInvalidTokenAccount, CheckNftHolding(account, mint, holder))
	}
}

func TestCheckMetadata(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	mint, other := keys[0], keys[1]

	// Matching symbols are accepted, whether or not the registry padded them
	assert.NoError(t, CheckMetadata(&metadata.Metadata{Mint: mint, Symbol: "CODE"}, mint, "CODE"))
	assert.NoError(t, CheckMetadata(&metadata.Metadata{Mint: mint, Symbol: "CODE\x00\x00\x00\x00\x00\x00"}, mint, "CODE"))

	// Different symbols are rejected
	assert.Equal(t, nft_airdrop.ErrInvalidMetadata, CheckMetadata(&metadata.Metadata{Mint: mint, Symbol: "KIN"}, mint, "CODE"))
	assert.Equal(t, nft_airdrop.ErrInvalidMetadata, CheckMetadata(&metadata.Metadata{Mint: mint, Symbol: "CODE2"}, mint, "CODE"))
	assert.Equal(t, nft_airdrop.ErrInvalidMetadata, CheckMetadata(&metadata.Metadata{Mint: mint, Symbol: ""}, mint, "CODE"))

	// Metadata for another mint is rejected before symbols are compared
	assert.Equal(t, nft_airdrop.ErrInvalidMetadata, CheckMetadata(&metadata.Metadata{Mint: other, Symbol: "CODE"}, mint, "CODE"))
}

func TestCheckTokenSource(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	pool := &nft_airdrop.PoolAccount{RewardAccount: keys[0]}

	assert.NoError(t, CheckTokenSource(keys[0], pool))
	assert.Equal(t, nft_airdrop.ErrInvalidTokenAccount, CheckTokenSource(keys[1], pool))
}
