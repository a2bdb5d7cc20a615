package memory

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Append assigns the next sequence number and stages a copy of entry.
func (r *EntryRepository) Append(_ context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	_, exists := r.store.entryByID[entry.ID]
	last := r.store.lastSeq
	r.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("entry %s already recorded", entry.ID)
	}

	entry.Sequence = last + int64(len(t.entries)) + 1

	t.entries = append(t.entries, cloneEntry(entry))
	return nil
}

// cloneEntry copies e so callers never share state with the journal.
func cloneEntry(e *domain.JournalEntry) *domain.JournalEntry {
	out := *e
	out.Postings = slices.Clone(e.Postings)
	out.Metadata = maps.Clone(e.Metadata)
	if e.ReversesID != nil {
		id := *e.ReversesID
		out.ReversesID = &id
	}
	return &out
}

// GetByID retrieves a committed entry.
func (r *EntryRepository) GetByID(_ context.Context, id string) (*domain.JournalEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.entryByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}
	return cloneEntry(e), nil
}

// FindReversal returns the entry reversing id as visible to tx.
func (r *EntryRepository) FindReversal(_ context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	for _, e := range t.entries {
		if e.ReversesID != nil && *e.ReversesID == id {
			return cloneEntry(e), nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if rid, ok := r.store.reversedBy[id]; ok {
		return cloneEntry(r.store.entryByID[rid]), nil
	}
	return nil, fmt.Errorf("%w: no reversal of %s", domain.ErrEntryNotFound, id)
}

// Iterate yields committed entries matching filter in journal order. Each
// range works on the journal as committed when it starts.
func (r *EntryRepository) Iterate(ctx context.Context, filter domain.EntryFilter) iter.Seq2[*domain.JournalEntry, error] {
	return func(yield func(*domain.JournalEntry, error) bool) {
		r.store.mu.RLock()
		start := 0
		if filter.From != nil {
			from := *filter.From
			start = sort.Search(len(r.store.entries), func(i int) bool {
				return !r.store.entries[i].Date.Before(from)
			})
		}
		snapshot := slices.Clone(r.store.entries[start:])
		r.store.mu.RUnlock()

		for _, e := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if filter.To != nil && e.Date.After(*filter.To) {
				return
			}
			if !filter.Match(e) {
				continue
			}
			if !yield(cloneEntry(e), nil) {
				return
			}
		}
	}
}

// Count returns the number of committed entries.
func (r *EntryRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.entries)), nil
}

// LastSequence returns the highest committed sequence number.
func (r *EntryRepository) LastSequence(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.lastSeq, nil
}
