// Package memory implements the repositories on an in-process store.
//
// The store admits one writer transaction at a time. Writes are staged on
// the transaction and applied atomically at commit, so readers only ever see
// committed state.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used.
var ErrTxDone = errors.New("transaction already committed or rolled back")

// ErrForeignTx is returned when a repository receives a transaction it did not create.
var ErrForeignTx = errors.New("transaction does not belong to the memory store")

// Store holds the committed state of the ledger.
type Store struct {
	writer chan struct{}

	mu         sync.RWMutex
	accounts   map[string]*domain.Account
	entries    []*domain.JournalEntry // ordered by date, then sequence
	entryByID  map[string]*domain.JournalEntry
	reversedBy map[string]string
	periods    map[string]*domain.Period
	outbox     []*domain.OutboxEvent
	lastSeq    int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		writer:     make(chan struct{}, 1),
		accounts:   make(map[string]*domain.Account),
		entryByID:  make(map[string]*domain.JournalEntry),
		reversedBy: make(map[string]string),
		periods:    make(map[string]*domain.Period),
	}
}

// TxManager implements usecase.TransactionManager for the memory store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for the writer slot and starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.store.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Tx{
		store:    m.store,
		accounts: make(map[string]*domain.Account),
		periods:  make(map[string]*domain.Period),
	}, nil
}

// Tx is a writer transaction with staged writes.
type Tx struct {
	store    *Store
	done     bool
	accounts map[string]*domain.Account
	entries  []*domain.JournalEntry
	periods  map[string]*domain.Period
	outbox   []*domain.OutboxEvent
}

// Commit applies the staged writes and releases the writer slot.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, acc := range t.accounts {
		s.accounts[name] = acc
	}
	for id, p := range t.periods {
		s.periods[id] = p
	}
	for _, e := range t.entries {
		s.insertEntry(e)
	}
	s.outbox = append(s.outbox, t.outbox...)

	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *Tx) release() {
	<-t.store.writer
}

// insertEntry places e in date order. Entries arrive with increasing
// sequence numbers, so ties on date keep insertion order.
func (s *Store) insertEntry(e *domain.JournalEntry) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return e.Before(s.entries[i])
	})
	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e

	s.entryByID[e.ID] = e
	if e.ReversesID != nil {
		s.reversedBy[*e.ReversesID] = e.ID
	}
	if e.Sequence > s.lastSeq {
		s.lastSeq = e.Sequence
	}
}

func txFrom(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t, nil
}
