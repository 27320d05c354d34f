package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

// frame is a single level of the instruction stack. It tracks the state of
// the accounts visible to the executing program so that changes can be
// attributed to the program that made them.
type frame struct {
	executor  *Executor
	programID ed25519.PublicKey
	accounts  []*AccountInfo
	depth     int

	pre map[string]snapshot
}

func newFrame(executor *Executor, programID ed25519.PublicKey, accounts []*AccountInfo, depth int) *frame {
	f := &frame{
		executor:  executor,
		programID: programID,
		accounts:  accounts,
		depth:     depth,
	}
	f.checkpoint()
	return f
}

func (f *frame) checkpoint() {
	f.pre = make(map[string]snapshot, len(f.accounts))
	for _, a := range f.accounts {
		f.pre[string(a.Key)] = takeSnapshot(a)
	}
}

// verify checks the changes made to the frame's accounts since the last
// checkpoint against the privileges of the frame's program.
func (f *frame) verify() error {
	for _, a := range f.accounts {
		if err := verifyChanges(f.programID, f.pre[string(a.Key)], a); err != nil {
			return err
		}
	}
	return nil
}

func (f *frame) find(key ed25519.PublicKey) *AccountInfo {
	for _, a := range f.accounts {
		if bytes.Equal(a.Key, key) {
			return a
		}
	}
	return nil
}

// InvokeSigned implements Invoker.InvokeSigned
func (f *frame) InvokeSigned(ctx context.Context, instruction solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error {
	if f.depth >= MaxInvokeDepth {
		return solana.ErrCallDepth
	}
	if bytes.Equal(instruction.Program, f.programID) {
		return solana.ErrReentrancyNotAllowed
	}

	program, ok := f.executor.programs[string(instruction.Program)]
	if !ok {
		return solana.ErrUnsupportedProgramID
	}

	signers := make(map[string]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(f.programID, seeds...)
		if err != nil {
			return solana.ErrInvalidSeeds
		}
		signers[string(address)] = struct{}{}
	}

	// Changes the caller made so far are checked against the caller before the
	// callee gets to see them.
	if err := f.verify(); err != nil {
		return err
	}

	views := make([]*AccountInfo, len(instruction.Accounts))
	unique := make(map[string]*AccountInfo, len(instruction.Accounts))
	for i, meta := range instruction.Accounts {
		if !containsKey(accounts, meta.PublicKey) {
			return solana.ErrMissingAccount
		}

		// Privileges come from the caller's own view, never from the infos it
		// passes in.
		caller := f.find(meta.PublicKey)
		if caller == nil {
			return solana.ErrMissingAccount
		}

		_, isDerivedSigner := signers[string(meta.PublicKey)]
		if meta.IsSigner && !caller.IsSigner && !isDerivedSigner {
			return solana.ErrPrivilegeEscalation
		}
		if meta.IsWritable && !caller.IsWritable {
			return solana.ErrPrivilegeEscalation
		}

		view, ok := unique[string(meta.PublicKey)]
		if !ok {
			view = &AccountInfo{
				Key:        caller.Key,
				Owner:      caller.Owner,
				Lamports:   caller.Lamports,
				Data:       append([]byte{}, caller.Data...),
				Executable: caller.Executable,
			}
			unique[string(meta.PublicKey)] = view
		}
		view.IsSigner = view.IsSigner || meta.IsSigner
		view.IsWritable = view.IsWritable || meta.IsWritable
		views[i] = view
	}

	callee := newFrame(f.executor, program.ProgramID(), views, f.depth+1)
	if err := program.Process(ctx, callee, views, instruction.Data); err != nil {
		return err
	}
	if err := callee.verify(); err != nil {
		return err
	}

	for _, view := range unique {
		for _, infos := range [][]*AccountInfo{f.accounts, accounts} {
			for _, a := range infos {
				if bytes.Equal(a.Key, view.Key) {
					a.Owner = view.Owner
					a.Lamports = view.Lamports
					a.Data = view.Data
				}
			}
		}
	}

	f.checkpoint()
	return nil
}

func containsKey(accounts []*AccountInfo, key ed25519.PublicKey) bool {
	for _, a := range accounts {
		if bytes.Equal(a.Key, key) {
			return true
		}
	}
	return false
}
