package account

import (
	"bytes"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrAlreadyInTx     = errors.New("already executing in an account store transaction")
)

// Record is a single addressable slot of on-chain state: the account stored at
// Address, owned by the program at Owner.
type Record struct {
	Id uint64

	Address string
	Owner   string

	Lamports   uint64
	Data       []byte
	Executable bool

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if err := validateKey(r.Address); err != nil {
		return errors.Wrap(err, "invalid address")
	}
	if err := validateKey(r.Owner); err != nil {
		return errors.Wrap(err, "invalid owner")
	}
	return nil
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id:            r.Id,
		Address:       r.Address,
		Owner:         r.Owner,
		Lamports:      r.Lamports,
		Data:          data,
		Executable:    r.Executable,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	cloned := r.Clone()
	*dst = cloned
}

// Equal reports whether both records describe the same account state,
// ignoring bookkeeping fields.
func (r *Record) Equal(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		r.Executable == other.Executable &&
		bytes.Equal(r.Data, other.Data)
}

func validateKey(value string) error {
	decoded, err := base58.Decode(value)
	if err != nil {
		return err
	}
	if len(decoded) != 32 {
		return errors.Errorf("expected 32 bytes, got %d", len(decoded))
	}
	return nil
}
