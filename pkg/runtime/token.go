package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
)

// TokenProgram implements the token program's Transfer command over accounts
// in the token program's packed layout. Other commands are rejected.
type TokenProgram struct {
	log *logrus.Entry
}

func NewTokenProgram() *TokenProgram {
	return &TokenProgram{
		log: logrus.StandardLogger().WithField("type", "runtime/token"),
	}
}

// ProgramID implements Program.ProgramID
func (p *TokenProgram) ProgramID() ed25519.PublicKey {
	return token.ProgramKey
}

// Process implements Program.Process
func (p *TokenProgram) Process(ctx context.Context, _ Invoker, accounts []*AccountInfo, data []byte) error {
	if len(data) == 0 {
		return token.ErrorInvalidInstruction
	}

	switch token.Command(data[0]) {
	case token.CommandTransfer:
		return p.transfer(accounts, data)
	default:
		return token.ErrorInvalidInstruction
	}
}

func (p *TokenProgram) transfer(accounts []*AccountInfo, data []byte) error {
	if len(data) != 1+8 {
		return token.ErrorInvalidInstruction
	}
	if len(accounts) < 3 {
		return solana.ErrNotEnoughAccountKeys
	}

	amount := binary.LittleEndian.Uint64(data[1:])
	sourceInfo, destInfo, authority := accounts[0], accounts[1], accounts[2]

	source, err := p.unpackAccount(sourceInfo)
	if err != nil {
		return err
	}
	dest, err := p.unpackAccount(destInfo)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if source.Amount < amount {
		return token.ErrorInsufficientFunds
	}
	if !bytes.Equal(source.Mint, dest.Mint) {
		return token.ErrorMintMismatch
	}

	var isDelegate bool
	switch {
	case bytes.Equal(source.Owner, authority.Key):
	case source.Delegate != nil && bytes.Equal(source.Delegate, authority.Key):
		if source.DelegatedAmount < amount {
			return token.ErrorInsufficientFunds
		}
		isDelegate = true
	default:
		return token.ErrorOwnerMismatch
	}
	if !authority.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	log := p.log.WithFields(logrus.Fields{
		"method":      "transfer",
		"source":      sourceInfo.String(),
		"destination": destInfo.String(),
		"amount":      amount,
	})

	if bytes.Equal(sourceInfo.Key, destInfo.Key) {
		log.Trace("self transfer")
		return nil
	}

	if dest.Amount+amount < dest.Amount {
		return token.ErrorOverflow
	}

	source.Amount -= amount
	dest.Amount += amount
	if isDelegate {
		source.DelegatedAmount -= amount
		if source.DelegatedAmount == 0 {
			source.Delegate = nil
		}
	}

	sourceInfo.Data = source.Marshal()
	destInfo.Data = dest.Marshal()

	log.Trace("transferred")
	return nil
}

func (p *TokenProgram) unpackAccount(info *AccountInfo) (*token.Account, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, solana.ErrIncorrectProgramID
	}

	var state token.Account
	if !state.Unmarshal(info.Data) {
		return nil, solana.ErrInvalidAccountData
	}
	if state.State == token.AccountStateUninitialized {
		return nil, token.ErrorUninitializedState
	}
	return &state, nil
}
