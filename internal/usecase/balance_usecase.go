package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
)

// BalanceUseCase derives balances from the journal.
type BalanceUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	cache       Cache
	cacheTTL    time.Duration
}

// NewBalanceUseCase creates a new BalanceUseCase. cache may be nil.
func NewBalanceUseCase(accountRepo AccountRepository, entryRepo EntryRepository, cache Cache) *BalanceUseCase {
	return &BalanceUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		cache:       cache,
		cacheTTL:    DefaultBalanceCacheTTL,
	}
}

// WithCacheTTL overrides how long cached balances live.
func (uc *BalanceUseCase) WithCacheTTL(ttl time.Duration) *BalanceUseCase {
	uc.cacheTTL = ttl
	return uc
}

// BalanceOf returns the signed balance of an account from every posting
// dated at or before asOf. A nil asOf includes the whole journal.
// The result is positive when the account stands on its normal side.
func (uc *BalanceUseCase) BalanceOf(ctx context.Context, name string, asOf *time.Time) (decimal.Decimal, error) {
	acc, err := uc.accountRepo.GetByName(ctx, name)
	if err != nil {
		return decimal.Zero, err
	}

	var key string
	if uc.cache != nil {
		watermark, err := uc.entryRepo.LastSequence(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		key = balanceCacheKey(name, asOf, watermark)
		if raw, err := uc.cache.Get(ctx, key); err == nil {
			if cached, err := decimal.NewFromString(string(raw)); err == nil {
				return cached, nil
			}
		}
	}

	balance := decimal.Zero
	for e, err := range uc.entryRepo.Iterate(ctx, domain.EntryFilter{To: asOf, Account: name}) {
		if err != nil {
			return decimal.Zero, err
		}
		balance = domain.SignedBalance(acc, balance, e)
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, []byte(balance.String()), uc.cacheTTL)
	}

	return balance, nil
}

// BalancesInput selects the entries folded into a balance set.
type BalancesInput struct {
	From         *time.Time
	To           *time.Time
	ExcludeKinds []domain.EntryKind
}

// Balances folds the selected entries over every registered account in one
// pass over the journal.
func (uc *BalanceUseCase) Balances(ctx context.Context, input BalancesInput) (*domain.BalanceSet, error) {
	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return fold(ctx, uc.entryRepo, accounts, domain.EntryFilter{
		From:         input.From,
		To:           input.To,
		ExcludeKinds: input.ExcludeKinds,
	})
}

// AccountLedgerInput represents input for an account's T-account view.
type AccountLedgerInput struct {
	From    *time.Time
	To      *time.Time
	Account string
}

// AccountLedger lists the postings of one account between From and To with
// a running balance. Postings before From make up the opening balance.
func (uc *BalanceUseCase) AccountLedger(ctx context.Context, input AccountLedgerInput) (*domain.AccountLedger, error) {
	acc, err := uc.accountRepo.GetByName(ctx, input.Account)
	if err != nil {
		return nil, err
	}

	var ledger *domain.AccountLedger
	opening := decimal.Zero
	for e, err := range uc.entryRepo.Iterate(ctx, domain.EntryFilter{To: input.To, Account: acc.Name}) {
		if err != nil {
			return nil, err
		}
		if input.From != nil && e.Date.Before(*input.From) {
			opening = domain.SignedBalance(acc, opening, e)
			continue
		}
		if ledger == nil {
			ledger = domain.NewAccountLedger(acc, input.From, input.To, opening)
		}
		ledger.Add(e)
	}

	if ledger == nil {
		ledger = domain.NewAccountLedger(acc, input.From, input.To, opening)
	}
	return ledger, nil
}

// fold applies every entry matching filter to a fresh balance set.
func fold(ctx context.Context, entries EntryRepository, accounts []*domain.Account, filter domain.EntryFilter) (*domain.BalanceSet, error) {
	bs := domain.NewBalanceSet(accounts)
	for e, err := range entries.Iterate(ctx, filter) {
		if err != nil {
			return nil, err
		}
		if err := bs.Apply(e); err != nil {
			return nil, err
		}
	}
	return bs, nil
}

func balanceCacheKey(name string, asOf *time.Time, watermark int64) string {
	at := "latest"
	if asOf != nil {
		at = asOf.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("balance:%s:%s:%d", name, at, watermark)
}
