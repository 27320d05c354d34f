package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

var (
	// ErrAccountNotFound indicates there is no account for the given address.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount indicates that a Solana account exists at the
	// given address, but it is either not initialized, or not configured correctly.
	ErrInvalidTokenAccount = errors.New("invalid token account")
	// ErrInvalidMint indicates the address does not hold a token mint.
	ErrInvalidMint = errors.New("invalid mint")
)

// Client provides utilities for accessing token accounts for a given token.
type Client struct {
	sc    solana.Client
	token ed25519.PublicKey
}

// NewClient creates a new Client.
func NewClient(sc solana.Client, token ed25519.PublicKey) *Client {
	return &Client{
		sc:    sc,
		token: token,
	}
}

func (c *Client) Token() ed25519.PublicKey {
	return c.token
}

// GetAccount returns the token account info for the specified account.
//
// If the account is not initialized, or belongs to a different
// mint, then ErrInvalidTokenAccount is returned.
func (c *Client) GetAccount(accountID ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	data, err := c.getProgramOwned(accountID, commitment, ErrInvalidTokenAccount)
	if err != nil {
		return nil, err
	}

	var account Account
	if !account.Unmarshal(data) || !bytes.Equal(c.token, account.Mint) {
		return nil, ErrInvalidTokenAccount
	}
	return &account, nil
}

// GetMint returns the mint state of the client's token, or ErrInvalidMint if
// the token address does not hold an initialized mint.
func (c *Client) GetMint(commitment solana.Commitment) (*Mint, error) {
	data, err := c.getProgramOwned(c.token, commitment, ErrInvalidMint)
	if err != nil {
		return nil, err
	}

	var mint Mint
	if !mint.Unmarshal(data) || !mint.IsInitialized {
		return nil, ErrInvalidMint
	}
	return &mint, nil
}

// getProgramOwned loads the data of an account owned by the token program,
// returning invalid when some other program owns it.
func (c *Client) getProgramOwned(address ed25519.PublicKey, commitment solana.Commitment, invalid error) ([]byte, error) {
	info, err := c.sc.GetAccountInfo(address, commitment)
	switch {
	case err == solana.ErrNoAccountInfo:
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, errors.Wrapf(err, "failed to get account info for %s", base58.Encode(address))
	case !bytes.Equal(info.Owner, ProgramKey):
		return nil, invalid
	}
	return info.Data, nil
}
