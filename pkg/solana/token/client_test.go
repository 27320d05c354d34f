package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

type fakeSolanaClient struct {
	solana.Client

	accounts map[string]solana.AccountInfo
}

func (f *fakeSolanaClient) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	info, ok := f.accounts[base58.Encode(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func TestClient_GetAccount(t *testing.T) {
	keys := generateKeys(t, 5)
	mint, owner, holder, foreign, missing := keys[0], keys[1], keys[2], keys[3], keys[4]

	account := Account{Mint: mint, Owner: owner, Amount: 7, State: AccountStateInitialized}
	foreignAccount := Account{Mint: foreign, Owner: owner, Amount: 7, State: AccountStateInitialized}

	sc := &fakeSolanaClient{
		accounts: map[string]solana.AccountInfo{
			base58.Encode(holder):  {Owner: ProgramKey, Data: account.Marshal()},
			base58.Encode(foreign): {Owner: ProgramKey, Data: foreignAccount.Marshal()},
			base58.Encode(owner):   {Owner: mint, Data: account.Marshal()},
		},
	}
	c := NewClient(sc, mint)
	assert.Equal(t, mint, c.Token())

	actual, err := c.GetAccount(holder, solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 7, actual.Amount)
	assert.Equal(t, owner, actual.Owner)

	_, err = c.GetAccount(foreign, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(owner, solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidTokenAccount, err)

	_, err = c.GetAccount(missing, solana.CommitmentConfirmed)
	assert.Equal(t, ErrAccountNotFound, err)
}

func TestClient_GetMint(t *testing.T) {
	keys := generateKeys(t, 2)

	mint := Mint{Supply: 1000, Decimals: 6, IsInitialized: true}
	sc := &fakeSolanaClient{
		accounts: map[string]solana.AccountInfo{
			base58.Encode(keys[0]): {Owner: ProgramKey, Data: mint.Marshal()},
			base58.Encode(keys[1]): {Owner: ProgramKey, Data: make([]byte, MintSize)},
		},
	}

	actual, err := NewClient(sc, keys[0]).GetMint(solana.CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 6, actual.Decimals)
	assert.EqualValues(t, 1000, actual.Supply)

	_, err = NewClient(sc, keys[1]).GetMint(solana.CommitmentConfirmed)
	assert.Equal(t, ErrInvalidMint, err)
}
