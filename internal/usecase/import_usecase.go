package usecase

import (
	"context"
	"fmt"

	"github.com/iho/bookkeeper/internal/domain"
)

// ImportUseCase loads a chart of accounts, opening balances and entries in
// one writer transaction.
type ImportUseCase struct {
	txManager TransactionManager
	accounts  *AccountUseCase
	entries   *EntryUseCase
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(txManager TransactionManager, accounts *AccountUseCase, entries *EntryUseCase) *ImportUseCase {
	return &ImportUseCase{
		txManager: txManager,
		accounts:  accounts,
		entries:   entries,
	}
}

// ImportInput represents a batch to import. Accounts are registered first,
// then the opening balances, then entries in the given order.
type ImportInput struct {
	OpeningBalances *RecordOpeningBalancesInput
	Accounts        []RegisterAccountInput
	Entries         []RecordEntryInput
}

// ImportResult summarizes an import.
type ImportResult struct {
	Accounts []*domain.Account
	Entries  []*domain.JournalEntry
}

// Import applies the whole batch or nothing.
func (uc *ImportUseCase) Import(ctx context.Context, input ImportInput) (*ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result := &ImportResult{
		Accounts: make([]*domain.Account, 0, len(input.Accounts)),
		Entries:  make([]*domain.JournalEntry, 0, len(input.Entries)+1),
	}

	for i, a := range input.Accounts {
		account, err := uc.accounts.register(ctx, tx, a)
		if err != nil {
			return nil, fmt.Errorf("account %d (%s): %w", i, a.Name, err)
		}
		result.Accounts = append(result.Accounts, account)
	}

	if ob := input.OpeningBalances; ob != nil && len(ob.Balances) > 0 {
		names := make([]string, 0, len(ob.Balances))
		for _, b := range ob.Balances {
			names = append(names, b.Account)
		}
		found, err := uc.accounts.accountRepo.GetByNamesForUpdate(ctx, tx, names)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]*domain.Account, len(found))
		for _, a := range found {
			byName[a.Name] = a
		}
		for _, name := range names {
			if _, ok := byName[name]; !ok {
				return nil, fmt.Errorf("opening balances: %w: %s", domain.ErrUnknownAccount, name)
			}
		}

		entry, err := uc.append(ctx, tx, openingEntry(*ob, byName))
		if err != nil {
			return nil, fmt.Errorf("opening balances: %w", err)
		}
		result.Entries = append(result.Entries, entry)
	}

	for i, in := range input.Entries {
		entry, err := uc.append(ctx, tx, &domain.JournalEntry{
			Date:        in.Date,
			Description: in.Description,
			Kind:        domain.EntryKindBusiness,
			Postings:    in.Postings,
			Metadata:    in.Metadata,
		})
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		result.Entries = append(result.Entries, entry)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *ImportUseCase) append(ctx context.Context, tx Transaction, entry *domain.JournalEntry) (*domain.JournalEntry, error) {
	if err := uc.entries.validate(entry); err != nil {
		return nil, err
	}
	if err := uc.entries.appendWithin(ctx, tx, entry, domain.EventTypeEntryRecorded); err != nil {
		return nil, err
	}
	return entry, nil
}
