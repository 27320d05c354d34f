package runtime

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/data/account"
	"github.com/code-payments/nft-airdrop/pkg/data/account/memory"
	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
	"github.com/code-payments/nft-airdrop/pkg/solana/token"
	"github.com/code-payments/nft-airdrop/pkg/testutil"
)

type testEnv struct {
	ctx      context.Context
	store    account.Store
	clock    *ManualClock
	executor *Executor
	ledger   *testutil.Ledger
	payer    ed25519.PrivateKey
}

func setup(t *testing.T, programs ...Program) *testEnv {
	store := memory.New()
	clock := NewManualClock(time.Unix(1_000, 0))

	return &testEnv{
		ctx:      context.Background(),
		store:    store,
		clock:    clock,
		executor: NewExecutor(store, clock, withManualTestOverrides(&testOverrides{verifySignatures: true, maxInstructions: 8}), programs...),
		ledger:   testutil.NewLedger(t, store),
		payer:    testutil.GenerateSolanaKeypair(t),
	}
}

func (e *testEnv) payerKey() ed25519.PublicKey {
	return e.payer.Public().(ed25519.PublicKey)
}

func (e *testEnv) submit(t *testing.T, signers []ed25519.PrivateKey, instructions ...solana.Instruction) error {
	txn := solana.NewTransaction(e.payerKey(), instructions...)
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.payer}, signers...)...))
	return e.executor.ExecuteTransaction(e.ctx, &txn)
}

// testProgram lets tests script what a program does with its accounts.
type testProgram struct {
	id      ed25519.PublicKey
	process func(ctx context.Context, invoker Invoker, accounts []*AccountInfo, data []byte) error
}

func (p *testProgram) ProgramID() ed25519.PublicKey {
	return p.id
}

func (p *testProgram) Process(ctx context.Context, invoker Invoker, accounts []*AccountInfo, data []byte) error {
	return p.process(ctx, invoker, accounts, data)
}

func requireInstructionError(t *testing.T, err error, index int, expected error) {
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.ErrorAs(t, err, &txErr)
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, index, txErr.InstructionError().Index)
	assert.ErrorIs(t, err, expected)
}

func TestTransfer_HappyPath(t *testing.T) {
	env := setup(t)

	mint := testutil.GenerateSolanaKey(t)
	owner := testutil.GenerateSolanaKeypair(t)
	source, dest := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(source, mint, owner.Public().(ed25519.PublicKey), 100)
	env.ledger.PutTokenAccount(dest, mint, testutil.GenerateSolanaKey(t), 5)

	require.NoError(t, env.submit(t, []ed25519.PrivateKey{owner}, token.Transfer(source, dest, owner.Public().(ed25519.PublicKey), 40)))

	assert.EqualValues(t, 60, env.ledger.TokenBalance(source))
	assert.EqualValues(t, 45, env.ledger.TokenBalance(dest))
}

func TestTransfer_Errors(t *testing.T) {
	mint := ed25519.PublicKey(make([]byte, ed25519.PublicKeySize))
	mint[0] = 1

	for _, tc := range []struct {
		name     string
		source   token.Account
		dest     token.Account
		amount   uint64
		expected error
	}{
		{
			name:     "insufficient funds",
			source:   token.Account{Mint: mint, Amount: 10, State: token.AccountStateInitialized},
			dest:     token.Account{Mint: mint, State: token.AccountStateInitialized},
			amount:   11,
			expected: token.ErrorInsufficientFunds,
		},
		{
			name:     "mint mismatch",
			source:   token.Account{Mint: mint, Amount: 10, State: token.AccountStateInitialized},
			dest:     token.Account{Mint: make(ed25519.PublicKey, ed25519.PublicKeySize), State: token.AccountStateInitialized},
			amount:   1,
			expected: token.ErrorMintMismatch,
		},
		{
			name:     "frozen source",
			source:   token.Account{Mint: mint, Amount: 10, State: token.AccountStateFrozen},
			dest:     token.Account{Mint: mint, State: token.AccountStateInitialized},
			amount:   1,
			expected: token.ErrorAccountFrozen,
		},
		{
			name:     "overflow",
			source:   token.Account{Mint: mint, Amount: 10, State: token.AccountStateInitialized},
			dest:     token.Account{Mint: mint, Amount: ^uint64(0), State: token.AccountStateInitialized},
			amount:   1,
			expected: token.ErrorOverflow,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := setup(t)

			owner := testutil.GenerateSolanaKeypair(t)
			source, dest := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)

			tc.source.Owner = owner.Public().(ed25519.PublicKey)
			tc.dest.Owner = testutil.GenerateSolanaKey(t)
			env.ledger.PutTokenAccountState(source, &tc.source)
			env.ledger.PutTokenAccountState(dest, &tc.dest)

			err := env.submit(t, []ed25519.PrivateKey{owner}, token.Transfer(source, dest, owner.Public().(ed25519.PublicKey), tc.amount))
			requireInstructionError(t, err, 0, tc.expected)

			assert.Equal(t, tc.source.Amount, env.ledger.TokenBalance(source))
			assert.Equal(t, tc.dest.Amount, env.ledger.TokenBalance(dest))
		})
	}
}

func TestTransfer_OwnerMismatch(t *testing.T) {
	env := setup(t)

	mint := testutil.GenerateSolanaKey(t)
	owner := testutil.GenerateSolanaKeypair(t)
	source, dest := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(source, mint, testutil.GenerateSolanaKey(t), 100)
	env.ledger.PutTokenAccount(dest, mint, testutil.GenerateSolanaKey(t), 0)

	err := env.submit(t, []ed25519.PrivateKey{owner}, token.Transfer(source, dest, owner.Public().(ed25519.PublicKey), 1))
	requireInstructionError(t, err, 0, token.ErrorOwnerMismatch)
}

func TestTransfer_MissingSignature(t *testing.T) {
	env := setup(t)

	mint := testutil.GenerateSolanaKey(t)
	owner := testutil.GenerateSolanaKey(t)
	source, dest := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(source, mint, owner, 100)
	env.ledger.PutTokenAccount(dest, mint, testutil.GenerateSolanaKey(t), 0)

	ix := token.Transfer(source, dest, owner, 1)
	ix.Accounts[2].IsSigner = false

	err := env.submit(t, nil, ix)
	requireInstructionError(t, err, 0, solana.ErrMissingRequiredSignature)
	assert.EqualValues(t, 100, env.ledger.TokenBalance(source))
}

func TestExecuteTransaction_Rollback(t *testing.T) {
	env := setup(t)

	mint := testutil.GenerateSolanaKey(t)
	owner := testutil.GenerateSolanaKeypair(t)
	ownerKey := owner.Public().(ed25519.PublicKey)
	source, dest := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(source, mint, ownerKey, 100)
	env.ledger.PutTokenAccount(dest, mint, testutil.GenerateSolanaKey(t), 0)

	err := env.submit(
		t,
		[]ed25519.PrivateKey{owner},
		token.Transfer(source, dest, ownerKey, 60),
		token.Transfer(source, dest, ownerKey, 60),
	)
	requireInstructionError(t, err, 1, token.ErrorInsufficientFunds)

	assert.EqualValues(t, 100, env.ledger.TokenBalance(source))
	assert.EqualValues(t, 0, env.ledger.TokenBalance(dest))
}

func TestExecuteTransaction_Sanitize(t *testing.T) {
	env := setup(t)

	mint := testutil.GenerateSolanaKey(t)
	owner := testutil.GenerateSolanaKeypair(t)
	ownerKey := owner.Public().(ed25519.PublicKey)
	source, dest := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)
	env.ledger.PutTokenAccount(source, mint, ownerKey, 100)
	env.ledger.PutTokenAccount(dest, mint, testutil.GenerateSolanaKey(t), 0)

	// Unsigned
	txn := solana.NewTransaction(env.payerKey(), token.Transfer(source, dest, ownerKey, 1))
	err := env.executor.ExecuteTransaction(env.ctx, &txn)
	var txErr *solana.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, solana.TransactionErrorMissingSignatureForFee, txErr.ErrorKey())

	// Signed by the wrong key
	txn = solana.NewTransaction(env.payerKey(), token.Transfer(source, dest, ownerKey, 1))
	require.NoError(t, txn.Sign(env.payer, owner))
	txn.Signatures[1] = txn.Signatures[0]
	err = env.executor.ExecuteTransaction(env.ctx, &txn)
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, solana.TransactionErrorSignatureFailure, txErr.ErrorKey())

	// Too many instructions
	var instructions []solana.Instruction
	for i := 0; i < 9; i++ {
		instructions = append(instructions, token.Transfer(source, dest, ownerKey, 1))
	}
	err = env.submit(t, []ed25519.PrivateKey{owner}, instructions...)
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, solana.TransactionErrorSanitizeFailure, txErr.ErrorKey())

	assert.EqualValues(t, 100, env.ledger.TokenBalance(source))
}

func TestExecuteTransaction_UnsupportedProgram(t *testing.T) {
	env := setup(t)

	ix := solana.NewInstruction(testutil.GenerateSolanaKey(t), []byte{1})
	err := env.submit(t, nil, ix)
	requireInstructionError(t, err, 0, solana.ErrUnsupportedProgramID)
}

func TestExecuteTransaction_ClockSysvar(t *testing.T) {
	var observed system.Clock
	program := &testProgram{
		id: testutil.GenerateSolanaKey(t),
		process: func(_ context.Context, _ Invoker, accounts []*AccountInfo, _ []byte) error {
			return observed.Unmarshal(accounts[0].Data)
		},
	}
	env := setup(t, program)
	env.clock.Set(time.Unix(1_234, 0))

	ix := solana.NewInstruction(program.id, nil, solana.NewReadonlyAccountMeta(system.ClockSysVar, false))
	require.NoError(t, env.submit(t, nil, ix))

	assert.EqualValues(t, 1_234, observed.UnixTimestamp)
	assert.True(t, observed.Slot > 0)
	assert.Nil(t, env.ledger.Get(system.ClockSysVar))
}

func TestExecuteTransaction_MissingAccountsAreEmpty(t *testing.T) {
	missing := testutil.GenerateSolanaKey(t)

	var observed AccountInfo
	program := &testProgram{
		id: testutil.GenerateSolanaKey(t),
		process: func(_ context.Context, _ Invoker, accounts []*AccountInfo, _ []byte) error {
			observed = *accounts[0]
			return nil
		},
	}
	env := setup(t, program)

	ix := solana.NewInstruction(program.id, nil, solana.NewAccountMeta(missing, false))
	require.NoError(t, env.submit(t, nil, ix))

	assert.EqualValues(t, system.ProgramKey[:], observed.Owner)
	assert.Empty(t, observed.Data)
	assert.Zero(t, observed.Lamports)
	assert.True(t, observed.IsWritable)
	assert.False(t, observed.IsSigner)
	assert.Nil(t, env.ledger.Get(missing))
}

func TestExecuteTransaction_OwnershipRules(t *testing.T) {
	programID := testutil.GenerateSolanaKey(t)
	owned, foreign := testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t)

	for _, tc := range []struct {
		name     string
		meta     solana.AccountMeta
		expected error
	}{
		{
			name:     "readonly owned account",
			meta:     solana.NewReadonlyAccountMeta(owned, false),
			expected: solana.ErrReadonlyDataModified,
		},
		{
			name:     "writable foreign account",
			meta:     solana.NewAccountMeta(foreign, false),
			expected: solana.ErrExternalAccountDataModified,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			program := &testProgram{
				id: programID,
				process: func(_ context.Context, _ Invoker, accounts []*AccountInfo, _ []byte) error {
					accounts[0].Data[0] = 0xff
					return nil
				},
			}
			env := setup(t, program)
			env.ledger.Put(owned, programID, []byte{1, 2, 3})
			env.ledger.Put(foreign, token.ProgramKey, []byte{1, 2, 3})

			err := env.submit(t, nil, solana.NewInstruction(programID, nil, tc.meta))
			requireInstructionError(t, err, 0, tc.expected)
			assert.Equal(t, []byte{1, 2, 3}, env.ledger.Get(tc.meta.PublicKey).Data)
		})
	}

	t.Run("writable owned account", func(t *testing.T) {
		program := &testProgram{
			id: programID,
			process: func(_ context.Context, _ Invoker, accounts []*AccountInfo, _ []byte) error {
				accounts[0].Data[0] = 0xff
				return nil
			},
		}
		env := setup(t, program)
		env.ledger.Put(owned, programID, []byte{1, 2, 3})

		require.NoError(t, env.submit(t, nil, solana.NewInstruction(programID, nil, solana.NewAccountMeta(owned, false))))
		assert.Equal(t, []byte{0xff, 2, 3}, env.ledger.Get(owned).Data)
	})
}
