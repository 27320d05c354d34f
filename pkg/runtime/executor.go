package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync/atomic"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/nft-airdrop/pkg/data/account"
	"github.com/code-payments/nft-airdrop/pkg/metrics"
	"github.com/code-payments/nft-airdrop/pkg/solana"
	"github.com/code-payments/nft-airdrop/pkg/solana/system"
)

const (
	metricsStructName = "runtime.executor"
)

// Executor runs transactions against an account store. Every transaction is
// executed inside a single store transaction, so either all of its effects
// are persisted or none are.
type Executor struct {
	log      *logrus.Entry
	conf     *conf
	store    account.Store
	clock    Clock
	programs map[string]Program

	slot uint64
}

// NewExecutor returns an Executor with the system and token programs
// registered alongside programs.
func NewExecutor(store account.Store, clock Clock, configProvider ConfigProvider, programs ...Program) *Executor {
	e := &Executor{
		log:      logrus.StandardLogger().WithField("type", "runtime/executor"),
		conf:     configProvider(),
		store:    store,
		clock:    clock,
		programs: make(map[string]Program),
	}

	for _, p := range append([]Program{NewSystemProgram(), NewTokenProgram()}, programs...) {
		e.programs[string(p.ProgramID())] = p
	}

	return e
}

type loadedAccount struct {
	info     *AccountInfo
	original snapshot
	exists   bool

	// Sysvars and programs are synthesized by the runtime and never written back
	persist bool
	// Executable is carried over from the stored record
	executable bool
}

// ExecuteTransaction executes every instruction in txn in order. A failing
// instruction is reported as a *solana.TransactionError wrapping a
// solana.InstructionError, and rolls back the whole transaction. Errors from
// the account store are returned as is.
func (e *Executor) ExecuteTransaction(ctx context.Context, txn *solana.Transaction) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ExecuteTransaction")
	defer func() {
		tracer.EndWithError(err)
	}()

	log := e.log.WithField("method", "ExecuteTransaction")
	if len(txn.Signatures) > 0 {
		log = log.WithField("signature", base58.Encode(txn.Signature()))
	}

	if err := e.sanitize(ctx, txn); err != nil {
		log.WithError(err).Debug("transaction failed sanitization")
		return err
	}

	err = e.store.ExecuteInTx(ctx, func(ctx context.Context) error {
		loaded, err := e.loadAccounts(ctx, txn.Message)
		if err != nil {
			return err
		}

		for i, ix := range txn.Message.Instructions {
			if err := e.executeInstruction(ctx, loaded, ix); err != nil {
				log.WithError(err).WithField("instruction", i).Info("instruction failed")
				return newInstructionError(i, err)
			}
		}

		return e.persist(ctx, loaded)
	})
	if err != nil {
		var txErr *solana.TransactionError
		if !errors.As(err, &txErr) {
			log.WithError(err).Warn("failure executing transaction")
		}
		return err
	}

	log.Debug("transaction executed")
	return nil
}

func (e *Executor) sanitize(ctx context.Context, txn *solana.Transaction) error {
	msg := txn.Message

	if uint64(len(msg.Instructions)) > e.conf.maxInstructions.Get(ctx) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if uint64(len(txn.Marshal())) > e.conf.maxTransactionSize.Get(ctx) {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}
	if int(msg.Header.NumSignatures) > len(msg.Accounts) || msg.Header.NumSignatures == 0 {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	seen := make(map[string]struct{}, len(msg.Accounts))
	for _, key := range msg.Accounts {
		if len(key) != ed25519.PublicKeySize {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		if _, ok := seen[string(key)]; ok {
			return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		seen[string(key)] = struct{}{}
	}

	for _, ix := range msg.Instructions {
		if int(ix.ProgramIndex) >= len(msg.Accounts) {
			return solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
		}
		for _, index := range ix.Accounts {
			if int(index) >= len(msg.Accounts) {
				return solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
			}
		}
	}

	if e.conf.verifySignatures.Get(ctx) {
		if err := txn.VerifySignatures(); err != nil {
			if errors.Is(err, solana.ErrMissingSignature) {
				return solana.NewTransactionError(solana.TransactionErrorMissingSignatureForFee)
			}
			return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
		}
	}

	return nil
}

func (e *Executor) loadAccounts(ctx context.Context, msg solana.Message) ([]*loadedAccount, error) {
	clock := &system.Clock{
		Slot:          atomic.AddUint64(&e.slot, 1),
		UnixTimestamp: e.clock.Now().Unix(),
	}

	loaded := make([]*loadedAccount, len(msg.Accounts))
	for i, key := range msg.Accounts {
		info := &AccountInfo{
			Key:        key,
			IsSigner:   msg.IsSigner(i),
			IsWritable: msg.IsWritable(i),
		}
		la := &loadedAccount{info: info}

		switch {
		case bytes.Equal(key, system.ClockSysVar):
			info.Owner = system.SysvarOwner
			info.Data = clock.Marshal()
			info.IsWritable = false
		case e.programs[string(key)] != nil:
			info.Owner = NativeLoaderKey
			info.Executable = true
			info.IsWritable = false
		default:
			la.persist = true

			record, err := e.store.Get(ctx, base58.Encode(key))
			switch err {
			case nil:
				owner, err := base58.Decode(record.Owner)
				if err != nil {
					return nil, errors.Wrapf(err, "invalid owner for account %s", record.Address)
				}

				la.exists = true
				la.executable = record.Executable
				info.Owner = owner
				info.Lamports = record.Lamports
				info.Data = record.Data
				info.Executable = record.Executable
			case account.ErrAccountNotFound:
				info.Owner = system.ProgramKey[:]
			default:
				return nil, errors.Wrapf(err, "failed to load account %s", base58.Encode(key))
			}
		}

		la.original = takeSnapshot(info)
		loaded[i] = la
	}

	return loaded, nil
}

func (e *Executor) executeInstruction(ctx context.Context, loaded []*loadedAccount, ix solana.CompiledInstruction) error {
	program, ok := e.programs[string(loaded[ix.ProgramIndex].info.Key)]
	if !ok {
		return solana.ErrUnsupportedProgramID
	}

	accounts := make([]*AccountInfo, len(ix.Accounts))
	for i, index := range ix.Accounts {
		accounts[i] = loaded[index].info
	}

	f := newFrame(e, program.ProgramID(), accounts, 1)
	if err := program.Process(ctx, f, accounts, ix.Data); err != nil {
		return err
	}
	return f.verify()
}

func (e *Executor) persist(ctx context.Context, loaded []*loadedAccount) error {
	for _, la := range loaded {
		if !la.persist || !la.original.changed(la.info) {
			continue
		}

		record := &account.Record{
			Address:    base58.Encode(la.info.Key),
			Owner:      base58.Encode(la.info.Owner),
			Lamports:   la.info.Lamports,
			Data:       la.info.Data,
			Executable: la.executable,
		}

		var err error
		if la.exists {
			err = e.store.Update(ctx, record)
		} else {
			err = e.store.Create(ctx, record)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to persist account %s", record.Address)
		}
	}

	return nil
}

func newInstructionError(index int, err error) error {
	ixErr := &solana.InstructionError{
		Index: index,
		Err:   err,
	}

	txErr, convErr := solana.TransactionErrorFromInstructionError(ixErr)
	if convErr != nil {
		return errors.Wrap(convErr, "failed to convert instruction error")
	}
	return txErr
}
