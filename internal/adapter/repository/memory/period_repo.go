package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	store *Store
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(store *Store) *PeriodRepository {
	return &PeriodRepository{store: store}
}

// Create stages a new period.
func (r *PeriodRepository) Create(_ context.Context, tx usecase.Transaction, period *domain.Period) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}
	p := *period
	t.periods[p.ID] = &p
	return nil
}

// GetByID retrieves a committed period.
func (r *PeriodRepository) GetByID(_ context.Context, id string) (*domain.Period, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.periods[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPeriodNotFound, id)
	}
	out := *p
	return &out, nil
}

// GetByIDForUpdate retrieves a period as visible to tx.
func (r *PeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Period, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}
	if p, ok := t.periods[id]; ok {
		out := *p
		return &out, nil
	}
	return r.GetByID(ctx, id)
}

// FindByDate returns the period containing date. A nil tx reads committed state.
func (r *PeriodRepository) FindByDate(_ context.Context, tx usecase.Transaction, date time.Time) (*domain.Period, error) {
	var staged map[string]*domain.Period
	if tx != nil {
		t, err := txFrom(tx)
		if err != nil {
			return nil, err
		}
		staged = t.periods
	}

	for _, p := range staged {
		if p.Contains(date) {
			out := *p
			return &out, nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for id, p := range r.store.periods {
		if _, shadowed := staged[id]; shadowed {
			continue
		}
		if p.Contains(date) {
			out := *p
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: no period contains %s", domain.ErrPeriodNotFound, date.Format(time.RFC3339))
}

// Update stages a period change.
func (r *PeriodRepository) Update(_ context.Context, tx usecase.Transaction, period *domain.Period) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}
	p := *period
	t.periods[p.ID] = &p
	return nil
}

// List returns committed periods ordered by start.
func (r *PeriodRepository) List(_ context.Context) ([]*domain.Period, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	periods := make([]*domain.Period, 0, len(r.store.periods))
	for _, p := range r.store.periods {
		out := *p
		periods = append(periods, &out)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Start.Before(periods[j].Start) })
	return periods, nil
}
