package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/nft-airdrop/pkg/data/account"

	pgutil "github.com/code-payments/nft-airdrop/pkg/database/postgres"
)

const (
	accountTableName = "airdrop__core_account"

	allColumns = `id, address, owner, lamports, data, executable, created_at, last_updated_at`
)

type accountModel struct {
	Id            sql.NullInt64 `db:"id"`
	Address       string        `db:"address"`
	Owner         string        `db:"owner"`
	Lamports      int64         `db:"lamports"`
	Data          []byte        `db:"data"`
	Executable    bool          `db:"executable"`
	CreatedAt     time.Time     `db:"created_at"`
	LastUpdatedAt time.Time     `db:"last_updated_at"`
}

func toAccountModel(obj *account.Record) (*accountModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &accountModel{
		Id:            sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      int64(obj.Lamports),
		Data:          data,
		Executable:    obj.Executable,
		CreatedAt:     obj.CreatedAt.UTC(),
		LastUpdatedAt: obj.LastUpdatedAt.UTC(),
	}, nil
}

func fromAccountModel(obj *accountModel) *account.Record {
	return &account.Record{
		Id:            uint64(obj.Id.Int64),
		Address:       obj.Address,
		Owner:         obj.Owner,
		Lamports:      uint64(obj.Lamports),
		Data:          obj.Data,
		Executable:    obj.Executable,
		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *accountModel) dbCreate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		m.LastUpdatedAt = m.CreatedAt

		query := `INSERT INTO ` + accountTableName + `
			(address, owner, lamports, data, executable, created_at, last_updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING ` + allColumns

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.Executable,
			m.CreatedAt,
			m.LastUpdatedAt,
		).StructScan(m)

		return pgutil.CheckUniqueViolation(err, account.ErrAccountExists)
	})
}

func (m *accountModel) dbUpdate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		m.LastUpdatedAt = time.Now().UTC()

		query := `UPDATE ` + accountTableName + `
			SET owner = $2, lamports = $3, data = $4, executable = $5, last_updated_at = $6
			WHERE address = $1
			RETURNING ` + allColumns

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.Executable,
			m.LastUpdatedAt,
		).StructScan(m)

		return pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	})
}

func dbGetAccount(ctx context.Context, db *sqlx.DB, address string) (*accountModel, error) {
	res := &accountModel{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allColumns + `
			FROM ` + accountTableName + `
			WHERE address = $1`

		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*accountModel, error) {
	res := []*accountModel{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT ` + allColumns + `
			FROM ` + accountTableName + `
			WHERE owner = $1
			ORDER BY id ASC`

		return tx.SelectContext(ctx, &res, query, owner)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}
	return res, nil
}
