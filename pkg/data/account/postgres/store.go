package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/nft-airdrop/pkg/data/account"

	pgutil "github.com/code-payments/nft-airdrop/pkg/database/postgres"
)

type store struct {
	db *sqlx.DB
}

// New returns a postgres backed account.Store
func New(db *sql.DB) account.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Create implements account.Store.Create
func (s *store) Create(ctx context.Context, record *account.Record) error {
	model, err := toAccountModel(record)
	if err != nil {
		return err
	}

	if err := model.dbCreate(ctx, s.db); err != nil {
		return err
	}

	fromAccountModel(model).CopyTo(record)
	return nil
}

// Update implements account.Store.Update
func (s *store) Update(ctx context.Context, record *account.Record) error {
	model, err := toAccountModel(record)
	if err != nil {
		return err
	}

	if err := model.dbUpdate(ctx, s.db); err != nil {
		return err
	}

	fromAccountModel(model).CopyTo(record)
	return nil
}

// Get implements account.Store.Get
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	model, err := dbGetAccount(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromAccountModel(model), nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	records := make([]*account.Record, len(models))
	for i, model := range models {
		records[i] = fromAccountModel(model)
	}
	return records, nil
}

// ExecuteInTx implements account.Store.ExecuteInTx
//
// Transactions run at the serializable isolation level and are retried when
// Postgres aborts them due to a serialization failure.
func (s *store) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := pgutil.ExecuteRetryable(func() error {
		return pgutil.ExecuteTxWithinCtx(ctx, s.db, sql.LevelSerializable, fn)
	})
	if err == pgutil.ErrAlreadyInTx {
		return account.ErrAlreadyInTx
	}
	return err
}
