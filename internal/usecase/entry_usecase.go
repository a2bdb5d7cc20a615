package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
)

// EntryUseCase handles the journal: recording, reversing and reading entries.
type EntryUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	periodRepo  PeriodRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     MetricsRecorder
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	periodRepo PeriodRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		periodRepo:  periodRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		retrier:     noopRetrier{},
		metrics:     noopMetrics{},
	}
}

// WithRetrier sets the retrier used around writer transactions.
func (uc *EntryUseCase) WithRetrier(r Retrier) *EntryUseCase {
	uc.retrier = r
	return uc
}

// WithMetrics sets the business metrics recorder.
func (uc *EntryUseCase) WithMetrics(m MetricsRecorder) *EntryUseCase {
	uc.metrics = m
	return uc
}

// RecordEntryInput represents input for recording a journal entry.
type RecordEntryInput struct {
	Date        time.Time
	Metadata    map[string]any
	Description string
	Postings    []domain.Posting
}

// RecordEntry validates and appends a business entry. A rejected entry
// leaves the journal unchanged.
func (uc *EntryUseCase) RecordEntry(ctx context.Context, input RecordEntryInput) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{
		Date:        input.Date,
		Description: input.Description,
		Kind:        domain.EntryKindBusiness,
		Postings:    input.Postings,
		Metadata:    input.Metadata,
	}
	return uc.record(ctx, entry, domain.EventTypeEntryRecorded)
}

// OpeningBalance is the starting balance of one account, signed on the
// account's normal side.
type OpeningBalance struct {
	Account string
	Amount  decimal.Decimal
}

// RecordOpeningBalancesInput represents input for recording starting balances.
type RecordOpeningBalancesInput struct {
	Date        time.Time
	Description string
	Balances    []OpeningBalance
}

// RecordOpeningBalances records one opening entry that brings each account to
// its starting balance. The balances must describe a balanced position.
func (uc *EntryUseCase) RecordOpeningBalances(ctx context.Context, input RecordOpeningBalancesInput) (*domain.JournalEntry, error) {
	names := make([]string, 0, len(input.Balances))
	for _, b := range input.Balances {
		names = append(names, b.Account)
	}

	accounts, err := uc.lookup(ctx, names)
	if err != nil {
		return nil, err
	}

	return uc.record(ctx, openingEntry(input, accounts), domain.EventTypeEntryRecorded)
}

// openingEntry posts each positive balance on the account's normal side and
// each negative one on the opposite side.
func openingEntry(input RecordOpeningBalancesInput, accounts map[string]*domain.Account) *domain.JournalEntry {
	postings := make([]domain.Posting, 0, len(input.Balances))
	for _, b := range input.Balances {
		if b.Amount.IsZero() {
			continue
		}
		side, amount := accounts[b.Account].NormalSide(), b.Amount
		if amount.IsNegative() {
			side, amount = side.Opposite(), amount.Neg()
		}
		postings = append(postings, domain.Posting{Account: b.Account, Side: side, Amount: amount})
	}

	description := input.Description
	if description == "" {
		description = "Opening balances"
	}

	return &domain.JournalEntry{
		Date:        input.Date,
		Description: description,
		Kind:        domain.EntryKindOpening,
		Postings:    postings,
	}
}

// ReverseEntryInput represents input for reversing an entry.
type ReverseEntryInput struct {
	// Date of the reversing entry. Defaults to the date of the original.
	Date        *time.Time
	EntryID     string
	Description string
}

// ReverseEntry records an entry with every posting of the original on the
// opposite side. Closing entries are not reversible and an entry can be
// reversed only once.
func (uc *EntryUseCase) ReverseEntry(ctx context.Context, input ReverseEntryInput) (*domain.JournalEntry, error) {
	original, err := uc.entryRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}

	if original.Kind == domain.EntryKindClosing || original.Kind == domain.EntryKindReversal {
		return nil, fmt.Errorf("%w: %s entry %s", domain.ErrNotReversible, original.Kind, original.ID)
	}

	date := original.Date
	if input.Date != nil {
		date = *input.Date
	}

	description := input.Description
	if description == "" {
		description = "Reversal of " + original.ID
	}

	originalID := original.ID
	entry := &domain.JournalEntry{
		Date:        date,
		Description: description,
		Kind:        domain.EntryKindReversal,
		ReversesID:  &originalID,
		Postings:    original.Reversal(),
	}
	return uc.record(ctx, entry, domain.EventTypeEntryReversed)
}

func (uc *EntryUseCase) record(ctx context.Context, entry *domain.JournalEntry, eventType string) (*domain.JournalEntry, error) {
	start := time.Now()

	if err := uc.validate(entry); err != nil {
		uc.metrics.EntryRejected(rejectReason(err))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	var recorded *domain.JournalEntry
	err := uc.retrier.Retry(ctx, func() error {
		// Each attempt works on a fresh copy so a failed Append cannot leak
		// a sequence number into the next try.
		attempt := *entry
		if err := uc.appendInTx(ctx, &attempt, eventType); err != nil {
			return err
		}
		recorded = &attempt
		return nil
	})
	if err != nil {
		uc.metrics.EntryRejected(rejectReason(err))
		return nil, err
	}

	uc.metrics.EntryRecorded(recorded.Kind, len(recorded.Postings), time.Since(start))
	return recorded, nil
}

func (uc *EntryUseCase) validate(entry *domain.JournalEntry) error {
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: entry date is required", domain.ErrInvalidPosting)
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := domain.ValidatePostingAmounts(entry.Postings); err != nil {
		return err
	}
	return domain.ValidateMetadata(entry.Metadata)
}

func (uc *EntryUseCase) appendInTx(ctx context.Context, entry *domain.JournalEntry, eventType string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.appendWithin(ctx, tx, entry, eventType); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// appendWithin checks an already validated entry against the registry and
// the period table and appends it inside tx. The entry is dated to its day.
func (uc *EntryUseCase) appendWithin(ctx context.Context, tx Transaction, entry *domain.JournalEntry, eventType string) error {
	entry.Date = domain.Day(entry.Date)

	accounts, err := uc.accountRepo.GetByNamesForUpdate(ctx, tx, entry.AccountNames())
	if err != nil {
		return err
	}
	if err := checkPostable(entry, accounts); err != nil {
		return err
	}

	if err := checkDateOpen(ctx, uc.periodRepo, entry.Date); err != nil {
		return err
	}

	if entry.ReversesID != nil {
		_, err := uc.entryRepo.FindReversal(ctx, tx, *entry.ReversesID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", domain.ErrAlreadyReversed, *entry.ReversesID)
		case !errors.Is(err, domain.ErrEntryNotFound):
			return err
		}
	}

	entry.ID = uc.idGen.Generate()
	entry.CreatedAt = time.Now().UTC()

	if err := uc.entryRepo.Append(ctx, tx, entry); err != nil {
		return err
	}

	return uc.outboxRepo.Create(ctx, tx, domain.EntryEvent(uc.idGen.Generate(), eventType, entry))
}

// lookup resolves account names outside of a writer transaction.
func (uc *EntryUseCase) lookup(ctx context.Context, names []string) (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account, len(names))
	for _, name := range names {
		acc, err := uc.accountRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		accounts[name] = acc
	}
	return accounts, nil
}

// GetEntry retrieves an entry by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	Filter domain.EntryFilter
	Limit  int
	Offset int
}

// ListEntries returns a page of entries in journal order.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
	input.Limit, input.Offset = domain.NormalizePage(input.Limit, input.Offset)

	entries := make([]*domain.JournalEntry, 0, input.Limit)
	skipped := 0
	for e, err := range uc.entryRepo.Iterate(ctx, input.Filter) {
		if err != nil {
			return nil, err
		}
		if skipped < input.Offset {
			skipped++
			continue
		}
		entries = append(entries, e)
		if len(entries) == input.Limit {
			break
		}
	}
	return entries, nil
}

// CountEntries returns the number of entries in the journal.
func (uc *EntryUseCase) CountEntries(ctx context.Context) (int64, error) {
	return uc.entryRepo.Count(ctx)
}

// checkDateOpen rejects a date inside a period that no longer accepts entries
// and any date on or before the last day of a closed period. Closed figures
// stay final even for days no period covers.
func checkDateOpen(ctx context.Context, periods PeriodRepository, date time.Time) error {
	list, err := periods.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range list {
		if p.Contains(date) && !p.AcceptsEntries() {
			return fmt.Errorf("%w: %s is %s", domain.ErrPeriodClosed, p.Name, p.Status)
		}
		if p.IsClosed() && date.Before(p.Until()) {
			return fmt.Errorf("%w: books are closed through %s (%s)",
				domain.ErrPeriodClosed, p.End.Format(time.DateOnly), p.Name)
		}
	}
	return nil
}

// checkPostable verifies that every account of a business entry exists and
// is active.
func checkPostable(entry *domain.JournalEntry, accounts []*domain.Account) error {
	byName := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}
	for _, name := range entry.AccountNames() {
		acc, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, name)
		}
		if !acc.Active {
			return fmt.Errorf("%w: %s", domain.ErrInactiveAccount, name)
		}
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnbalancedEntry):
		return "unbalanced"
	case errors.Is(err, domain.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, domain.ErrInactiveAccount):
		return "inactive_account"
	case errors.Is(err, domain.ErrPeriodClosed):
		return "period_closed"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return "already_reversed"
	case errors.Is(err, domain.ErrEmptyEntry),
		errors.Is(err, domain.ErrInvalidPosting),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrMetadataTooLarge):
		return "invalid"
	default:
		return "error"
	}
}
