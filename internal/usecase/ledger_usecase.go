package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when the ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ConsistencyReport is the result of a full pass over the journal.
type ConsistencyReport struct {
	CheckedAt         time.Time
	UnbalancedEntries []string
	TotalDebits       decimal.Decimal
	TotalCredits      decimal.Decimal
	Entries           int64
	// EquationHolds is assets == liabilities + capital + current earnings.
	EquationHolds bool
	Consistent    bool
}

// CheckConsistency re-validates every entry and the trial balance of the
// whole journal. The report is returned together with ErrInconsistentLedger
// when a check fails.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	accounts, err := uc.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		CheckedAt:         time.Now().UTC(),
		UnbalancedEntries: []string{},
	}

	bs := domain.NewBalanceSet(accounts)
	for e, err := range uc.entryRepo.Iterate(ctx, domain.EntryFilter{}) {
		if err != nil {
			return nil, err
		}
		report.Entries++
		if err := e.Validate(); err != nil {
			report.UnbalancedEntries = append(report.UnbalancedEntries, e.ID)
		}
		if err := bs.Apply(e); err != nil {
			return nil, err
		}
	}

	report.TotalDebits, report.TotalCredits = bs.Totals()
	report.EquationHolds = domain.BuildBalanceSheet(bs, nil).Balanced
	report.Consistent = len(report.UnbalancedEntries) == 0 &&
		report.TotalDebits.Equal(report.TotalCredits) &&
		report.EquationHolds

	if !report.Consistent {
		return report, fmt.Errorf("%w: debits=%s credits=%s unbalanced_entries=%d",
			ErrInconsistentLedger, report.TotalDebits, report.TotalCredits, len(report.UnbalancedEntries))
	}

	return report, nil
}
