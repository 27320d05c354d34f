package testutil

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/data/account"
	"github.com/code-payments/nft-airdrop/pkg/solana/metadata"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

// Ledger seeds and inspects account state directly in a store, bypassing the
// runtime. It's used to set up token mints, token accounts and metadata that
// tests would otherwise need a full ledger for.
type Ledger struct {
	t     *testing.T
	store account.Store
}

func NewLedger(t *testing.T, store account.Store) *Ledger {
	return &Ledger{
		t:     t,
		store: store,
	}
}

// Put creates or overwrites the account at key.
func (l *Ledger) Put(key, owner ed25519.PublicKey, data []byte) {
	ctx := context.Background()

	record := &account.Record{
		Address: base58.Encode(key),
		Owner:   base58.Encode(owner),
		Data:    data,
	}

	existing, err := l.store.Get(ctx, record.Address)
	switch err {
	case nil:
		record.Lamports = existing.Lamports
		require.NoError(l.t, l.store.Update(ctx, record))
	case account.ErrAccountNotFound:
		require.NoError(l.t, l.store.Create(ctx, record))
	default:
		require.NoError(l.t, err)
	}
}

func (l *Ledger) PutMint(key ed25519.PublicKey, decimals byte, supply uint64) {
	mint := &token.Mint{
		Supply:        supply,
		Decimals:      decimals,
		IsInitialized: true,
	}
	l.Put(key, token.ProgramKey, mint.Marshal())
}

func (l *Ledger) PutTokenAccount(key, mint, owner ed25519.PublicKey, amount uint64) {
	l.PutTokenAccountState(key, &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	})
}

func (l *Ledger) PutTokenAccountState(key ed25519.PublicKey, state *token.Account) {
	l.Put(key, token.ProgramKey, state.Marshal())
}

// PutMetadata stores a metadata record for mint at its canonical address and
// returns that address.
func (l *Ledger) PutMetadata(mint ed25519.PublicKey, symbol string) ed25519.PublicKey {
	address, _, err := metadata.GetMetadataAddress(mint)
	require.NoError(l.t, err)

	l.PutMetadataAt(address, &metadata.Metadata{
		Key:             metadata.KeyMetadataV1,
		UpdateAuthority: GenerateSolanaKey(l.t),
		Mint:            mint,
		Name:            "Test NFT",
		Symbol:          symbol,
		URI:             "https://example.com/nft.json",
	})
	return address
}

func (l *Ledger) PutMetadataAt(key ed25519.PublicKey, md *metadata.Metadata) {
	data, err := md.Marshal()
	require.NoError(l.t, err)
	l.Put(key, metadata.ProgramKey, data)
}

// Get returns the stored record, or nil if the account doesn't exist.
func (l *Ledger) Get(key ed25519.PublicKey) *account.Record {
	record, err := l.store.Get(context.Background(), base58.Encode(key))
	if err == account.ErrAccountNotFound {
		return nil
	}
	require.NoError(l.t, err)
	return record
}

func (l *Ledger) TokenAccount(key ed25519.PublicKey) *token.Account {
	record := l.Get(key)
	require.NotNil(l.t, record)

	var state token.Account
	require.True(l.t, state.Unmarshal(record.Data))
	return &state
}

func (l *Ledger) TokenBalance(key ed25519.PublicKey) uint64 {
	return l.TokenAccount(key).Amount
}
