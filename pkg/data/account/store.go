package account

import (
	"context"
)

type Store interface {
	// Create stores a new account.
	//
	// Returns ErrAccountExists if an account already exists at the address.
	Create(ctx context.Context, record *Record) error

	// Update replaces the state of an existing account.
	//
	// Returns ErrAccountNotFound if there is no account at the address.
	Update(ctx context.Context, record *Record) error

	// Get finds the account at the provided address.
	//
	// Returns ErrAccountNotFound if no account is found.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner returns every account owned by a program, in creation order.
	//
	// Returns ErrAccountNotFound if no accounts are found.
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)

	// ExecuteInTx runs fn such that the writes it makes through the provided
	// context are committed together if fn succeeds, and discarded otherwise.
	// Transactions do not nest.
	ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
