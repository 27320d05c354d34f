package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"

	"github.com/code-payments/nft-airdrop/pkg/solana"
)

// MaxInvokeDepth is the deepest instruction stack allowed, counting the top
// level instruction.
const MaxInvokeDepth = 4

// NativeLoaderKey owns every program registered with the runtime.
var NativeLoaderKey ed25519.PublicKey

func init() {
	var err error

	NativeLoaderKey, err = base58.Decode("NativeLoader1111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

// AccountInfo is a program's view of an account for the duration of an
// instruction. Changes to Owner, Lamports and Data are persisted when the
// transaction succeeds, provided the program was allowed to make them.
type AccountInfo struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
	IsSigner   bool
	IsWritable bool
}

// IsOwnedBy reports whether program owns the account.
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

func (a *AccountInfo) String() string {
	return base58.Encode(a.Key)
}

// Program is an on-chain program the runtime can execute.
type Program interface {
	ProgramID() ed25519.PublicKey

	// Process executes a single instruction against accounts, which are given
	// in the order the instruction lists them.
	Process(ctx context.Context, invoker Invoker, accounts []*AccountInfo, data []byte) error
}

// Invoker performs cross program invocations on behalf of the executing program.
type Invoker interface {
	// InvokeSigned executes instruction with the calling program's accounts.
	// Each set of signer seeds derives a program address under the calling
	// program, and the derived address is treated as a signer of instruction.
	InvokeSigned(ctx context.Context, instruction solana.Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

type snapshot struct {
	owner    ed25519.PublicKey
	lamports uint64
	data     []byte
}

func takeSnapshot(a *AccountInfo) snapshot {
	s := snapshot{
		owner:    make(ed25519.PublicKey, len(a.Owner)),
		lamports: a.Lamports,
		data:     make([]byte, len(a.Data)),
	}
	copy(s.owner, a.Owner)
	copy(s.data, a.Data)
	return s
}

func (s snapshot) changed(a *AccountInfo) bool {
	return !bytes.Equal(s.owner, a.Owner) || s.lamports != a.Lamports || !bytes.Equal(s.data, a.Data)
}

// verifyChanges checks that the changes program made to an account since pre
// are ones it was permitted to make.
func verifyChanges(program ed25519.PublicKey, pre snapshot, post *AccountInfo) error {
	isOwner := bytes.Equal(pre.owner, program)

	if !bytes.Equal(pre.owner, post.Owner) {
		// Only the owner may reassign a writable account, and only while its
		// data is zeroed.
		if !isOwner || !post.IsWritable || !isZeroed(post.Data) {
			return solana.ErrModifiedProgramID
		}
	}

	if !bytes.Equal(pre.data, post.Data) {
		if !post.IsWritable {
			return solana.ErrReadonlyDataModified
		}
		if !isOwner {
			return solana.ErrExternalAccountDataModified
		}
	}

	if pre.lamports != post.Lamports {
		if !post.IsWritable {
			return solana.ErrReadonlyDataModified
		}
		if post.Lamports < pre.lamports && !isOwner {
			return solana.ErrExternalAccountDataModified
		}
	}

	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
