package services

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// IDPrefix marks transaction ids generated by this store.
const IDPrefix = "txn_"

// TransactionStore owns the transaction collection in insertion order.
// It is not safe for concurrent use; Tracker serializes access.
type TransactionStore struct {
	items []core.Transaction
	now   func() time.Time
	newID func() string
}

// NewTransactionStore returns an empty store. A nil clock or id generator
// falls back to time.Now and "txn_" + UUIDv4.
func NewTransactionStore(now func() time.Time, newID func() string) *TransactionStore {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return IDPrefix + uuid.NewString() }
	}
	return &TransactionStore{items: []core.Transaction{}, now: now, newID: newID}
}

// Add validates d and appends a new transaction with a fresh id and
// creation timestamp.
func (s *TransactionStore) Add(d core.Draft) (core.Transaction, error) {
	f, err := d.Parse()
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:        s.newID(),
		Timestamp: s.now().UnixMilli(),
	}.WithFields(f)
	s.items = append(s.items, t)
	return t, nil
}

// Update replaces every mutable field of transaction id. The id and the
// creation timestamp are kept. On any error nothing changes.
func (s *TransactionStore) Update(id string, d core.Draft) (core.Transaction, error) {
	i := s.index(id)
	if i < 0 {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	f, err := d.Parse()
	if err != nil {
		return core.Transaction{}, err
	}
	s.items[i] = s.items[i].WithFields(f)
	return s.items[i], nil
}

// Delete removes transaction id. Unknown ids are a no-op reported as false.
func (s *TransactionStore) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *TransactionStore) Get(id string) (core.Transaction, bool) {
	i := s.index(id)
	if i < 0 {
		return core.Transaction{}, false
	}
	return s.items[i], true
}

// List returns a copy of the collection in insertion order.
func (s *TransactionStore) List() []core.Transaction {
	return slices.Clone(s.items)
}

// Replace swaps in a loaded collection wholesale.
func (s *TransactionStore) Replace(txns []core.Transaction) {
	s.items = slices.Clone(txns)
	if s.items == nil {
		s.items = []core.Transaction{}
	}
}

func (s *TransactionStore) Clear() {
	s.items = []core.Transaction{}
}

func (s *TransactionStore) Len() int {
	return len(s.items)
}

func (s *TransactionStore) index(id string) int {
	return slices.IndexFunc(s.items, func(t core.Transaction) bool { return t.ID == id })
}
