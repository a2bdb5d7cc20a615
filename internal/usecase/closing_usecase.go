package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
)

// ClosingUseCase manages accounting periods and closes them into retained
// earnings.
type ClosingUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	periodRepo  PeriodRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     MetricsRecorder
}

// NewClosingUseCase creates a new ClosingUseCase.
func NewClosingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	periodRepo PeriodRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *ClosingUseCase {
	return &ClosingUseCase{
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
func (uc *ClosingUseCase) WithRetrier(r Retrier) *ClosingUseCase {
	uc.retrier = r
	return uc
}

// WithMetrics sets the business metrics recorder.
func (uc *ClosingUseCase) WithMetrics(m MetricsRecorder) *ClosingUseCase {
	uc.metrics = m
	return uc
}

// OpenPeriodInput represents input for opening a period.
type OpenPeriodInput struct {
	Start time.Time
	End   time.Time
	Name  string
}

// OpenPeriod creates an open period. Periods may not overlap, and a new
// period must start after the last closed one ends.
func (uc *ClosingUseCase) OpenPeriod(ctx context.Context, input OpenPeriodInput) (*domain.Period, error) {
	now := time.Now().UTC()

	period := &domain.Period{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Start:     domain.Day(input.Start),
		End:       domain.Day(input.End),
		Status:    domain.PeriodStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if period.Name == "" {
		period.Name = period.Start.Format(time.DateOnly) + "/" + period.End.Format(time.DateOnly)
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := uc.periodRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if period.Overlaps(other) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOverlappingPeriod, other.Name)
		}
		if other.IsClosed() && period.Start.Before(other.Until()) {
			return nil, fmt.Errorf("%w: books are closed through %s (%s)",
				domain.ErrPeriodClosed, other.End.Format(time.DateOnly), other.Name)
		}
	}

	if err := uc.periodRepo.Create(ctx, tx, period); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.PeriodOpenedEvent(uc.idGen.Generate(), period)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return period, nil
}

// GetPeriod retrieves a period by ID.
func (uc *ClosingUseCase) GetPeriod(ctx context.Context, id string) (*domain.Period, error) {
	return uc.periodRepo.GetByID(ctx, id)
}

// ListPeriods lists all periods ordered by start.
func (uc *ClosingUseCase) ListPeriods(ctx context.Context) ([]*domain.Period, error) {
	return uc.periodRepo.List(ctx)
}

// ClosePeriodInput represents input for closing a period.
type ClosePeriodInput struct {
	PeriodID string
	// RetainedEarnings overrides the designated retained earnings account.
	RetainedEarnings string
}

// ClosePeriodResult is the outcome of a close. Entry is nil when every
// income and expense account was already zero.
type ClosePeriodResult struct {
	Period *domain.Period
	Entry  *domain.JournalEntry
}

// ClosePeriod zeroes every income and expense account as of the period end
// against retained earnings with a single closing entry and marks the period
// closed. Closing is all-or-nothing and happens at most once per period.
// Periods close in order: every earlier period must already be closed.
func (uc *ClosingUseCase) ClosePeriod(ctx context.Context, input ClosePeriodInput) (*ClosePeriodResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	var result *ClosePeriodResult
	err := uc.retrier.Retry(ctx, func() error {
		r, err := uc.closeInTx(ctx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	postings := 0
	if result.Entry != nil {
		postings = len(result.Entry.Postings)
	}
	uc.metrics.PeriodClosed(postings)

	return result, nil
}

func (uc *ClosingUseCase) closeInTx(ctx context.Context, input ClosePeriodInput) (*ClosePeriodResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	period, err := uc.periodRepo.GetByIDForUpdate(ctx, tx, input.PeriodID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := period.BeginClosing(now); err != nil {
		return nil, err
	}

	periods, err := uc.periodRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range periods {
		if other.ID != period.ID && other.Start.Before(period.Start) && !other.IsClosed() {
			return nil, fmt.Errorf("%w: earlier period %s is %s", domain.ErrPeriodNotClosed, other.Name, other.Status)
		}
	}

	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	end := period.End
	bs, err := fold(ctx, uc.entryRepo, accounts, domain.EntryFilter{To: &end})
	if err != nil {
		return nil, err
	}

	debits, credits := bs.Totals()
	if !debits.Equal(credits) {
		return nil, fmt.Errorf("%w: debits=%s credits=%s", domain.ErrUnbalancedPeriod, debits, credits)
	}

	var closing *domain.JournalEntry
	if bs.HasTemporaryBalances() {
		re, err := uc.retainedEarnings(ctx, tx, input.RetainedEarnings)
		if err != nil {
			return nil, err
		}

		closing = &domain.JournalEntry{
			ID:          uc.idGen.Generate(),
			Date:        period.End,
			Description: "Closing entry for " + period.Name,
			Kind:        domain.EntryKindClosing,
			Postings:    bs.ClosingPostings(re.Name),
			Metadata:    map[string]any{"period_id": period.ID},
			CreatedAt:   now,
		}
		if err := closing.Validate(); err != nil {
			return nil, err
		}
		if err := uc.entryRepo.Append(ctx, tx, closing); err != nil {
			return nil, err
		}
	}

	var closingID *string
	if closing != nil {
		closingID = &closing.ID
	}
	if err := period.MarkClosed(closingID, now); err != nil {
		return nil, err
	}
	if err := uc.periodRepo.Update(ctx, tx, period); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.PeriodClosedEvent(uc.idGen.Generate(), period, closing)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ClosePeriodResult{Period: period, Entry: closing}, nil
}

func (uc *ClosingUseCase) retainedEarnings(ctx context.Context, tx Transaction, override string) (*domain.Account, error) {
	if override == "" {
		return uc.accountRepo.FindRetainedEarnings(ctx, tx)
	}

	accounts, err := uc.accountRepo.GetByNamesForUpdate(ctx, tx, []string{override})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, override)
	}

	acc := accounts[0]
	if acc.Classification != domain.Capital || acc.Contra {
		return nil, fmt.Errorf("%w: %s is not a regular capital account", domain.ErrInvalidClassification, acc.Name)
	}
	return acc, nil
}
