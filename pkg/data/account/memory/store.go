package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/code-payments/nft-airdrop/pkg/data/account"
)

const degree = 2

type item struct {
	record *account.Record
}

func (i item) Less(than btree.Item) bool {
	return i.record.Address < than.(item).record.Address
}

func key(address string) item {
	return item{record: &account.Record{Address: address}}
}

type txContextKey struct{}

// tx holds the writes staged by a transaction until it commits.
type tx struct {
	store  *store
	staged *btree.BTree
}

type store struct {
	// txMu serializes transactions, and writes made outside of one
	txMu sync.Mutex

	mu       sync.RWMutex
	accounts *btree.BTree
	last     uint64
}

type ById []*account.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns an in-memory account.Store backed by a btree keyed by address.
func New() account.Store {
	return &store{
		accounts: btree.New(degree),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.accounts = btree.New(degree)
	s.last = 0
	s.mu.Unlock()
}

func (s *store) txFromContext(ctx context.Context) *tx {
	t, ok := ctx.Value(txContextKey{}).(*tx)
	if !ok || t.store != s {
		return nil
	}
	return t
}

// find must be called with s.mu held.
func (s *store) find(t *tx, address string) *account.Record {
	if t != nil {
		if staged := t.staged.Get(key(address)); staged != nil {
			return staged.(item).record
		}
	}

	if committed := s.accounts.Get(key(address)); committed != nil {
		return committed.(item).record
	}
	return nil
}

// write must be called with s.mu held.
func (s *store) write(t *tx, record *account.Record) {
	cloned := record.Clone()
	if t != nil {
		t.staged.ReplaceOrInsert(item{record: &cloned})
		return
	}
	s.accounts.ReplaceOrInsert(item{record: &cloned})
}

// Create implements account.Store.Create
func (s *store) Create(ctx context.Context, record *account.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	t := s.txFromContext(ctx)
	if t == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.find(t, record.Address); existing != nil {
		return account.ErrAccountExists
	}

	s.last++
	record.Id = s.last
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.LastUpdatedAt = record.CreatedAt

	s.write(t, record)
	return nil
}

// Update implements account.Store.Update
func (s *store) Update(ctx context.Context, record *account.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	t := s.txFromContext(ctx)
	if t == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.find(t, record.Address)
	if existing == nil {
		return account.ErrAccountNotFound
	}

	record.Id = existing.Id
	record.CreatedAt = existing.CreatedAt
	record.LastUpdatedAt = time.Now()

	s.write(t, record)
	return nil
}

// Get implements account.Store.Get
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	t := s.txFromContext(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := s.find(t, address)
	if existing == nil {
		return nil, account.ErrAccountNotFound
	}

	cloned := existing.Clone()
	return &cloned, nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*account.Record, error) {
	t := s.txFromContext(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	byAddress := make(map[string]*account.Record)
	collect := func(i btree.Item) bool {
		record := i.(item).record
		if record.Owner == owner {
			byAddress[record.Address] = record
		} else {
			delete(byAddress, record.Address)
		}
		return true
	}

	s.accounts.Ascend(collect)
	if t != nil {
		t.staged.Ascend(collect)
	}

	if len(byAddress) == 0 {
		return nil, account.ErrAccountNotFound
	}

	res := make([]*account.Record, 0, len(byAddress))
	for _, record := range byAddress {
		cloned := record.Clone()
		res = append(res, &cloned)
	}
	sort.Sort(ById(res))

	return res, nil
}

// ExecuteInTx implements account.Store.ExecuteInTx
func (s *store) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFromContext(ctx) != nil {
		return account.ErrAlreadyInTx
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{
		store:  s,
		staged: btree.New(degree),
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, t)); err != nil {
		return err
	}

	s.mu.Lock()
	t.staged.Ascend(func(i btree.Item) bool {
		s.accounts.ReplaceOrInsert(i)
		return true
	})
	s.mu.Unlock()

	return nil
}
