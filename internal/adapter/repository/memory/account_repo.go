package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stages a new account.
func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	if _, ok := t.accounts[account.Name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, account.Name)
	}
	r.store.mu.RLock()
	_, exists := r.store.accounts[account.Name]
	r.store.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, account.Name)
	}

	acc := *account
	t.accounts[acc.Name] = &acc
	return nil
}

// GetByName retrieves a committed account.
func (r *AccountRepository) GetByName(_ context.Context, name string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, name)
	}
	out := *acc
	return &out, nil
}

// GetByNamesForUpdate returns the accounts visible to tx.
func (r *AccountRepository) GetByNamesForUpdate(_ context.Context, tx usecase.Transaction, names []string) ([]*domain.Account, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(names))
	for _, name := range names {
		acc, ok := t.accounts[name]
		if !ok {
			acc, ok = r.store.accounts[name]
		}
		if ok {
			out := *acc
			accounts = append(accounts, &out)
		}
	}
	return accounts, nil
}

// FindRetainedEarnings returns the designated retained earnings account
// visible to tx.
func (r *AccountRepository) FindRetainedEarnings(_ context.Context, tx usecase.Transaction) (*domain.Account, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	for _, acc := range t.accounts {
		if acc.RetainedEarnings {
			out := *acc
			return &out, nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, acc := range r.store.accounts {
		if acc.RetainedEarnings {
			out := *acc
			return &out, nil
		}
	}
	return nil, domain.ErrNoRetainedEarnings
}

// SetActive stages an activity change.
func (r *AccountRepository) SetActive(_ context.Context, tx usecase.Transaction, name string, active bool, updatedAt time.Time) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}

	acc, ok := t.accounts[name]
	if !ok {
		r.store.mu.RLock()
		committed, found := r.store.accounts[name]
		r.store.mu.RUnlock()
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, name)
		}
		cp := *committed
		acc = &cp
		t.accounts[name] = acc
	}

	acc.Active = active
	acc.UpdatedAt = updatedAt
	return nil
}

// List returns committed accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []*domain.Account{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// ListAll returns every committed account ordered by name.
func (r *AccountRepository) ListAll(_ context.Context) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		out := *acc
		accounts = append(accounts, &out)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}
