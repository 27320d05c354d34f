package runtime

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
)

// SystemProgram implements the subset of the system program used to allocate
// program owned accounts. Rent is not modelled: lamports requested by
// CreateAccount are credited to the new account without debiting the funder.
type SystemProgram struct {
	log *logrus.Entry
}

func NewSystemProgram() *SystemProgram {
	return &SystemProgram{
		log: logrus.StandardLogger().WithField("type", "runtime/system"),
	}
}

// ProgramID implements Program.ProgramID
func (p *SystemProgram) ProgramID() ed25519.PublicKey {
	return system.ProgramKey[:]
}

// Process implements Program.Process
func (p *SystemProgram) Process(ctx context.Context, _ Invoker, accounts []*AccountInfo, data []byte) error {
	switch {
	case system.IsCreateAccount(data):
		return p.createAccount(accounts, data)
	case system.IsTransfer(data):
		return p.transfer(accounts, data)
	default:
		return solana.ErrInvalidInstructionData
	}
}

func (p *SystemProgram) createAccount(accounts []*AccountInfo, data []byte) error {
	if len(data) != 4+2*8+ed25519.PublicKeySize {
		return solana.ErrInvalidInstructionData
	}
	if len(accounts) < 2 {
		return solana.ErrNotEnoughAccountKeys
	}

	lamports := binary.LittleEndian.Uint64(data[4:])
	size := binary.LittleEndian.Uint64(data[4+8:])
	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(owner, data[4+2*8:])

	funder, created := accounts[0], accounts[1]
	if !funder.IsSigner || !created.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	if created.Lamports > 0 || len(created.Data) > 0 || !created.IsOwnedBy(p.ProgramID()) {
		p.log.WithField("account", created.String()).Debug("account already in use")
		return system.ErrAccountAlreadyInUse
	}
	if size > system.MaxPermittedDataLength {
		return system.ErrInvalidAccountDataLength
	}

	created.Lamports = lamports
	created.Data = make([]byte, size)
	created.Owner = owner
	return nil
}

func (p *SystemProgram) transfer(accounts []*AccountInfo, data []byte) error {
	if len(data) != 4+8 {
		return solana.ErrInvalidInstructionData
	}
	if len(accounts) < 2 {
		return solana.ErrNotEnoughAccountKeys
	}

	lamports := binary.LittleEndian.Uint64(data[4:])
	from, to := accounts[0], accounts[1]
	if !from.IsSigner {
		return solana.ErrMissingRequiredSignature
	}
	if len(from.Data) > 0 || !from.IsOwnedBy(p.ProgramID()) {
		return solana.ErrInvalidArgument
	}
	if from.Lamports < lamports {
		return system.ErrResultWithNegativeLamports
	}
	if to.Lamports+lamports < to.Lamports {
		return solana.ErrInvalidArgument
	}

	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
