package tests

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/nft-airdrop/pkg/data/account"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testRoundTrip,
		testUpdate,
		testInvalidRecord,
		testGetAllByOwner,
		testTxCommit,
		testTxRollback,
		testTxNotNested,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s account.Store) {
	ctx := context.Background()

	expected := &account.Record{
		Address:  newAddress(t),
		Owner:    newAddress(t),
		Lamports: 1_000_000,
		Data:     []byte{1, 2, 3, 4},
	}

	_, err := s.Get(ctx, expected.Address)
	assert.Equal(t, account.ErrAccountNotFound, err)

	require.NoError(t, s.Create(ctx, expected))
	assert.True(t, expected.Id > 0)
	assert.False(t, expected.CreatedAt.IsZero())

	actual, err := s.Get(ctx, expected.Address)
	require.NoError(t, err)
	assert.True(t, expected.Equal(actual))
	assert.Equal(t, expected.Id, actual.Id)
	assert.False(t, actual.Executable)

	duplicate := &account.Record{
		Address: expected.Address,
		Owner:   newAddress(t),
	}
	assert.Equal(t, account.ErrAccountExists, s.Create(ctx, duplicate))

	actual, err = s.Get(ctx, expected.Address)
	require.NoError(t, err)
	assert.Equal(t, expected.Owner, actual.Owner)

	// Mutating a returned record must not leak into the store
	actual.Data[0] = 0xff
	again, err := s.Get(ctx, expected.Address)
	require.NoError(t, err)
	assert.EqualValues(t, 1, again.Data[0])
}

func testUpdate(t *testing.T, s account.Store) {
	ctx := context.Background()

	record := &account.Record{
		Address: newAddress(t),
		Owner:   newAddress(t),
		Data:    make([]byte, 8),
	}
	assert.Equal(t, account.ErrAccountNotFound, s.Update(ctx, record))

	require.NoError(t, s.Create(ctx, record))
	id := record.Id

	updated := record.Clone()
	updated.Owner = newAddress(t)
	updated.Lamports = 42
	updated.Data = []byte{8, 7, 6, 5, 4, 3, 2, 1}
	updated.Executable = true
	require.NoError(t, s.Update(ctx, &updated))
	assert.Equal(t, id, updated.Id)

	actual, err := s.Get(ctx, record.Address)
	require.NoError(t, err)
	assert.True(t, updated.Equal(actual))
	assert.Equal(t, id, actual.Id)
	assert.True(t, actual.Executable)
	assert.False(t, actual.LastUpdatedAt.Before(actual.CreatedAt))
}

func testInvalidRecord(t *testing.T, s account.Store) {
	ctx := context.Background()

	for _, record := range []*account.Record{
		{Address: "", Owner: newAddress(t)},
		{Address: newAddress(t), Owner: ""},
		{Address: "invalid-base58-0OIl", Owner: newAddress(t)},
		{Address: base58.Encode(make([]byte, 31)), Owner: newAddress(t)},
	} {
		assert.Error(t, s.Create(ctx, record))
	}
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	ctx := context.Background()

	owner := newAddress(t)
	other := newAddress(t)

	_, err := s.GetAllByOwner(ctx, owner)
	assert.Equal(t, account.ErrAccountNotFound, err)

	var expected []string
	for i := 0; i < 5; i++ {
		record := &account.Record{
			Address: newAddress(t),
			Owner:   owner,
			Data:    []byte{byte(i)},
		}
		require.NoError(t, s.Create(ctx, record))
		expected = append(expected, record.Address)

		require.NoError(t, s.Create(ctx, &account.Record{
			Address: newAddress(t),
			Owner:   other,
		}))
	}

	actual, err := s.GetAllByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, actual, len(expected))
	for i, record := range actual {
		assert.Equal(t, expected[i], record.Address)
		assert.Equal(t, owner, record.Owner)
		assert.EqualValues(t, []byte{byte(i)}, record.Data)
	}

	actual, err = s.GetAllByOwner(ctx, other)
	require.NoError(t, err)
	assert.Len(t, actual, 5)
}

func testTxCommit(t *testing.T, s account.Store) {
	ctx := context.Background()

	owner := newAddress(t)
	existing := &account.Record{
		Address: newAddress(t),
		Owner:   owner,
		Data:    []byte{0},
	}
	require.NoError(t, s.Create(ctx, existing))

	created := &account.Record{
		Address: newAddress(t),
		Owner:   owner,
		Data:    []byte{1},
	}

	err := s.ExecuteInTx(ctx, func(ctx context.Context) error {
		if err := s.Create(ctx, created); err != nil {
			return err
		}

		// Writes are visible within the transaction
		actual, err := s.Get(ctx, created.Address)
		if err != nil {
			return err
		}
		if !created.Equal(actual) {
			return errors.New("staged record mismatch")
		}

		updated := existing.Clone()
		updated.Data = []byte{2}
		if err := s.Update(ctx, &updated); err != nil {
			return err
		}

		records, err := s.GetAllByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if len(records) != 2 {
			return errors.New("expected staged record in owner listing")
		}

		return nil
	})
	require.NoError(t, err)

	actual, err := s.Get(ctx, created.Address)
	require.NoError(t, err)
	assert.True(t, created.Equal(actual))

	actual, err = s.Get(ctx, existing.Address)
	require.NoError(t, err)
	assert.EqualValues(t, []byte{2}, actual.Data)

	records, err := s.GetAllByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func testTxRollback(t *testing.T, s account.Store) {
	ctx := context.Background()

	existing := &account.Record{
		Address:  newAddress(t),
		Owner:    newAddress(t),
		Lamports: 10,
		Data:     []byte{0},
	}
	require.NoError(t, s.Create(ctx, existing))

	created := &account.Record{
		Address: newAddress(t),
		Owner:   newAddress(t),
	}

	failure := errors.New("failed after writing")
	err := s.ExecuteInTx(ctx, func(ctx context.Context) error {
		if err := s.Create(ctx, created); err != nil {
			return err
		}

		updated := existing.Clone()
		updated.Lamports = 0
		updated.Data = []byte{1}
		if err := s.Update(ctx, &updated); err != nil {
			return err
		}

		return failure
	})
	assert.Equal(t, failure, err)

	_, err = s.Get(ctx, created.Address)
	assert.Equal(t, account.ErrAccountNotFound, err)

	actual, err := s.Get(ctx, existing.Address)
	require.NoError(t, err)
	assert.True(t, existing.Equal(actual))

	// The address remains available after the rollback
	require.NoError(t, s.Create(ctx, created))
}

func testTxNotNested(t *testing.T, s account.Store) {
	ctx := context.Background()

	var nestedErr error
	err := s.ExecuteInTx(ctx, func(ctx context.Context) error {
		nestedErr = s.ExecuteInTx(ctx, func(ctx context.Context) error {
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, account.ErrAlreadyInTx, nestedErr)
}

func newAddress(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}
