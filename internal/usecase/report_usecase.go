package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
)

// ReportUseCase projects balances into the trial balance, income statement
// and balance sheet.
type ReportUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	periodRepo  PeriodRepository
	// requireClosed rejects balance sheets dated inside an unclosed period.
	requireClosed bool
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	periodRepo PeriodRepository,
	requireClosed bool,
) *ReportUseCase {
	return &ReportUseCase{
		accountRepo:   accountRepo,
		entryRepo:     entryRepo,
		periodRepo:    periodRepo,
		requireClosed: requireClosed,
	}
}

// TrialBalance lists every account with a nonzero balance as of asOf.
func (uc *ReportUseCase) TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error) {
	bs, err := uc.balances(ctx, domain.EntryFilter{To: asOf})
	if err != nil {
		return nil, err
	}
	return domain.BuildTrialBalance(bs, asOf), nil
}

// IncomeStatementInput selects the range of an income statement. PeriodID
// takes precedence over From and To.
type IncomeStatementInput struct {
	From     *time.Time
	To       *time.Time
	PeriodID string
}

// IncomeStatement reports income and expenses over a range using pre-closing
// balances.
func (uc *ReportUseCase) IncomeStatement(ctx context.Context, input IncomeStatementInput) (*domain.IncomeStatement, error) {
	from, to := input.From, input.To
	if input.PeriodID != "" {
		period, err := uc.periodRepo.GetByID(ctx, input.PeriodID)
		if err != nil {
			return nil, err
		}
		start, end := period.Start, period.End
		from, to = &start, &end
	}

	bs, err := uc.balances(ctx, domain.EntryFilter{
		From:         from,
		To:           to,
		ExcludeKinds: []domain.EntryKind{domain.EntryKindClosing},
	})
	if err != nil {
		return nil, err
	}

	statement := domain.BuildIncomeStatement(bs)
	statement.From = from
	statement.To = to
	statement.PeriodID = input.PeriodID
	return statement, nil
}

// BalanceSheetInput selects the date of a balance sheet. PeriodID reports as
// of the period end and takes precedence over AsOf.
type BalanceSheetInput struct {
	AsOf     *time.Time
	PeriodID string
}

// BalanceSheet reports assets, liabilities and capital as of a date.
func (uc *ReportUseCase) BalanceSheet(ctx context.Context, input BalanceSheetInput) (*domain.BalanceSheet, error) {
	asOf := input.AsOf

	if input.PeriodID != "" {
		period, err := uc.periodRepo.GetByID(ctx, input.PeriodID)
		if err != nil {
			return nil, err
		}
		if uc.requireClosed && !period.IsClosed() {
			return nil, fmt.Errorf("%w: %s is %s", domain.ErrPeriodNotClosed, period.Name, period.Status)
		}
		end := period.End
		asOf = &end
	} else if uc.requireClosed {
		at := time.Now().UTC()
		if asOf != nil {
			at = *asOf
		}
		period, err := uc.periodRepo.FindByDate(ctx, nil, at)
		switch {
		case err == nil:
			if !period.IsClosed() {
				return nil, fmt.Errorf("%w: %s is %s", domain.ErrPeriodNotClosed, period.Name, period.Status)
			}
		case !errors.Is(err, domain.ErrPeriodNotFound):
			return nil, err
		}
	}

	bs, err := uc.balances(ctx, domain.EntryFilter{To: asOf})
	if err != nil {
		return nil, err
	}

	sheet := domain.BuildBalanceSheet(bs, asOf)
	sheet.PeriodID = input.PeriodID
	return sheet, nil
}

func (uc *ReportUseCase) balances(ctx context.Context, filter domain.EntryFilter) (*domain.BalanceSet, error) {
	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return fold(ctx, uc.entryRepo, accounts, filter)
}
