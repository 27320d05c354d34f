package pg

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/nft-airdrop/pkg/retry"
)

type txStructContextKey struct{}
type txIsolationContextKey struct{}

var (
	ErrAlreadyInTx = errors.New("already executing in existing db tx")
	ErrNotInTx     = errors.New("not executing in existing db tx")
)

// MaxSerializationRetries bounds how many times ExecuteRetryable re-runs an
// operation that Postgres aborted with a serialization failure.
const MaxSerializationRetries = 10

// ExecuteRetryable runs fn, running it again when it fails with a
// serialization failure. fn must be safe to run again from scratch, which is
// the case for a call to ExecuteTxWithinCtx.
func ExecuteRetryable(fn func() error) error {
	_, err := retry.Retry(
		fn,
		retry.RetriableFunc(IsSerializationFailure),
		retry.Limit(MaxSerializationRetries+1),
	)
	return err
}

// ExecuteTxWithinCtx runs fn in a new transaction that is carried by the
// context passed to fn, so that store calls made with it share the
// transaction through ExecuteInTx. The transaction commits if fn succeeds.
//
// Transactions don't nest: ErrAlreadyInTx is returned if ctx already carries
// one.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	isolation = effectiveIsolation(isolation)

	if ctx.Value(txStructContextKey{}) != nil {
		return ErrAlreadyInTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txStructContextKey{}, tx)
	ctx = context.WithValue(ctx, txIsolationContextKey{}, isolation)

	return finishTx(tx, fn(ctx))
}

// ExecuteInTx runs fn in the transaction carried by ctx, or in a new one that
// it commits or rolls back itself when ctx carries none.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = effectiveIsolation(isolation)

	tx, err := getTxFromCtx(ctx, isolation)
	switch err {
	case nil:
		return fn(tx)
	case ErrNotInTx:
	default:
		return err
	}

	tx, err = db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}
	return finishTx(tx, fn(tx))
}

// finishTx commits tx if err is nil, and otherwise rolls it back and returns
// err. Rolling back is required for sql.DB to release the connection.
func finishTx(tx *sqlx.Tx, err error) error {
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}

func effectiveIsolation(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted // Postgres default
	}
	return isolation
}

func getTxFromCtx(ctx context.Context, desiredIsolation sql.IsolationLevel) (*sqlx.Tx, error) {
	txFromCtx := ctx.Value(txStructContextKey{})
	if txFromCtx == nil {
		return nil, ErrNotInTx
	}

	tx, ok := txFromCtx.(*sqlx.Tx)
	if !ok {
		return nil, errors.New("invalid type for tx")
	}

	currentIsolation, ok := ctx.Value(txIsolationContextKey{}).(sql.IsolationLevel)
	if !ok {
		return nil, errors.New("unexpectedly don't have isolation level set")
	}

	if currentIsolation < desiredIsolation {
		return nil, errors.Errorf("current tx isolation %s doesn't meet required %s", currentIsolation, desiredIsolation)
	}

	return tx, nil
}
