package usecase_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bookkeeper/internal/adapter/repository/memory"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/idgen"
	"github.com/iho/bookkeeper/internal/usecase"
)

type ledger struct {
	accounts *usecase.AccountUseCase
	entries  *usecase.EntryUseCase
	balances *usecase.BalanceUseCase
	closing  *usecase.ClosingUseCase
	reports  *usecase.ReportUseCase
	check    *usecase.LedgerUseCase
	imports  *usecase.ImportUseCase
}

func newLedger(t *testing.T, requireClosed bool) *ledger {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	accountRepo := memory.NewAccountRepository(store)
	entryRepo := memory.NewEntryRepository(store)
	periodRepo := memory.NewPeriodRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	ids := idgen.NewULIDGenerator()

	l := &ledger{
		accounts: usecase.NewAccountUseCase(txm, accountRepo, outboxRepo, ids),
		entries:  usecase.NewEntryUseCase(txm, accountRepo, entryRepo, periodRepo, outboxRepo, ids),
		balances: usecase.NewBalanceUseCase(accountRepo, entryRepo, nil),
		closing:  usecase.NewClosingUseCase(txm, accountRepo, entryRepo, periodRepo, outboxRepo, ids),
		reports:  usecase.NewReportUseCase(accountRepo, entryRepo, periodRepo, requireClosed),
		check:    usecase.NewLedgerUseCase(accountRepo, entryRepo),
	}
	l.imports = usecase.NewImportUseCase(txm, l.accounts, l.entries)
	return l
}

func (l *ledger) register(t *testing.T, name string, c domain.Classification) {
	t.Helper()
	_, err := l.accounts.RegisterAccount(context.Background(), usecase.RegisterAccountInput{Name: name, Classification: c})
	require.NoError(t, err)
}

func (l *ledger) record(t *testing.T, d string, postings ...domain.Posting) *domain.JournalEntry {
	t.Helper()
	e, err := l.entries.RecordEntry(context.Background(), usecase.RecordEntryInput{Date: day(d), Postings: postings})
	require.NoError(t, err)
	return e
}

func (l *ledger) count(t *testing.T) int64 {
	t.Helper()
	n, err := l.entries.CountEntries(context.Background())
	require.NoError(t, err)
	return n
}

func (l *ledger) balance(t *testing.T, name string) decimal.Decimal {
	t.Helper()
	b, err := l.balances.BalanceOf(context.Background(), name, nil)
	require.NoError(t, err)
	return b
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dr(account string, amount int64) domain.Posting {
	return domain.Posting{Account: account, Side: domain.Debit, Amount: decimal.NewFromInt(amount)}
}

func cr(account string, amount int64) domain.Posting {
	return domain.Posting{Account: account, Side: domain.Credit, Amount: decimal.NewFromInt(amount)}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestLedger_CashSales(t *testing.T) {
	l := newLedger(t, false)
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)

	l.record(t, "2024-01-05", dr("cash", 100), cr("sales", 100))

	assert.True(t, l.balance(t, "cash").Equal(dec(100)))
	assert.True(t, l.balance(t, "sales").Equal(dec(100)))

	tb, err := l.reports.TrialBalance(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.True(t, tb.TotalDebits.Equal(dec(100)))
	assert.True(t, tb.TotalCredits.Equal(dec(100)))
	require.Len(t, tb.Lines, 2)
}

func TestLedger_RejectedEntriesLeaveStoreUnchanged(t *testing.T) {
	l := newLedger(t, false)
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)
	l.record(t, "2024-01-05", dr("cash", 100), cr("sales", 100))

	tests := []struct {
		name     string
		postings []domain.Posting
		wantErr  error
	}{
		{name: "unbalanced 50/40", postings: []domain.Posting{dr("cash", 50), cr("sales", 40)}, wantErr: domain.ErrUnbalancedEntry},
		{name: "unknown account", postings: []domain.Posting{dr("bank", 10), cr("sales", 10)}, wantErr: domain.ErrUnknownAccount},
		{name: "no postings", postings: nil, wantErr: domain.ErrEmptyEntry},
		{name: "zero amount", postings: []domain.Posting{dr("cash", 0), cr("sales", 0)}, wantErr: domain.ErrInvalidAmount},
		{name: "negative amount", postings: []domain.Posting{dr("cash", -5), cr("sales", -5)}, wantErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := l.count(t)
			_, err := l.entries.RecordEntry(context.Background(), usecase.RecordEntryInput{Date: day("2024-01-06"), Postings: tt.postings})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, l.count(t))
			assert.True(t, l.balance(t, "cash").Equal(dec(100)))
		})
	}
}

func TestLedger_RegisterAccount(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)

	_, err := l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "cash", Classification: domain.Liability})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)

	_, err = l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "x", Classification: "equity"})
	assert.ErrorIs(t, err, domain.ErrInvalidClassification)

	_, err = l.accounts.GetAccount(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)

	returns, err := l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "returns", ContraOf: "sales"})
	require.NoError(t, err)
	assert.Equal(t, domain.Income, returns.Classification)
	assert.True(t, returns.Contra)
	assert.Equal(t, domain.Debit, returns.NormalSide())

	_, err = l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "returns2", ContraOf: "returns"})
	assert.ErrorIs(t, err, domain.ErrContraParentNotRegular)

	_, err = l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "depr", Classification: domain.Expense, ContraOf: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidClassification)

	_, err = l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "re", Classification: domain.Capital, RetainedEarnings: true})
	require.NoError(t, err)
	_, err = l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "re2", Classification: domain.Capital, RetainedEarnings: true})
	assert.ErrorIs(t, err, domain.ErrRetainedEarningsExists)

	list, err := l.accounts.ListAccounts(ctx, usecase.ListAccountsInput{})
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"cash", "re", "returns", "sales"}, names)
}

func TestLedger_InactiveAccountRejectsPostings(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "old", domain.Asset)
	l.record(t, "2024-01-01", dr("old", 10), cr("cash", 10))

	acc, err := l.accounts.DeactivateAccount(ctx, "old")
	require.NoError(t, err)
	assert.False(t, acc.Active)

	_, err = l.entries.RecordEntry(ctx, usecase.RecordEntryInput{Date: day("2024-01-02"), Postings: []domain.Posting{dr("cash", 10), cr("old", 10)}})
	assert.ErrorIs(t, err, domain.ErrInactiveAccount)
	assert.True(t, l.balance(t, "old").Equal(dec(10)))
}

func setupTrading(t *testing.T, l *ledger) *domain.Period {
	t.Helper()
	ctx := context.Background()

	l.register(t, "cash", domain.Asset)
	l.register(t, "equity", domain.Capital)
	l.register(t, "sales", domain.Income)
	l.register(t, "salaries", domain.Expense)
	_, err := l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "retained", Classification: domain.Capital, RetainedEarnings: true})
	require.NoError(t, err)
	_, err = l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "refunds", ContraOf: "sales"})
	require.NoError(t, err)

	period, err := l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Name: "2024", Start: day("2024-01-01"), End: day("2024-12-31")})
	require.NoError(t, err)

	l.record(t, "2024-01-01", dr("cash", 1000), cr("equity", 1000))
	l.record(t, "2024-03-01", dr("cash", 500), cr("sales", 500))
	l.record(t, "2024-04-01", dr("refunds", 50), cr("cash", 50))
	l.record(t, "2024-05-01", dr("salaries", 300), cr("cash", 300))
	return period
}

func TestLedger_ClosePeriod(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	period := setupTrading(t, l)

	before := l.count(t)
	res, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.Equal(t, domain.EntryKindClosing, res.Entry.Kind)
	assert.True(t, res.Entry.Date.Equal(period.End))
	assert.Equal(t, domain.PeriodStatusClosed, res.Period.Status)
	require.NotNil(t, res.Period.ClosingEntryID)
	assert.Equal(t, res.Entry.ID, *res.Period.ClosingEntryID)
	assert.Equal(t, before+1, l.count(t))

	for _, name := range []string{"sales", "refunds", "salaries"} {
		assert.True(t, l.balance(t, name).IsZero(), name)
	}
	assert.True(t, l.balance(t, "retained").Equal(dec(150)))
	assert.True(t, l.balance(t, "cash").Equal(dec(1150)))

	_, err = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
	assert.Equal(t, before+1, l.count(t))

	_, err = l.entries.RecordEntry(ctx, usecase.RecordEntryInput{Date: day("2024-06-01"), Postings: []domain.Posting{dr("cash", 1), cr("sales", 1)}})
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	l.record(t, "2025-01-02", dr("cash", 1), cr("sales", 1))

	tb, err := l.reports.TrialBalance(ctx, nil)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
}

func TestLedger_ClosePeriodWithoutTemporaryBalances(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "equity", domain.Capital)

	period, err := l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-01-01"), End: day("2024-03-31")})
	require.NoError(t, err)
	l.record(t, "2024-01-01", dr("cash", 10), cr("equity", 10))

	res, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
	require.NoError(t, err)
	assert.Nil(t, res.Entry)
	assert.Nil(t, res.Period.ClosingEntryID)
	assert.Equal(t, int64(1), l.count(t))
}

func TestLedger_ClosePeriodNeedsRetainedEarnings(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)
	l.register(t, "capital", domain.Capital)

	period, err := l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-01-01"), End: day("2024-03-31")})
	require.NoError(t, err)
	l.record(t, "2024-01-01", dr("cash", 10), cr("sales", 10))

	_, err = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
	assert.ErrorIs(t, err, domain.ErrNoRetainedEarnings)

	got, err := l.closing.GetPeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodStatusOpen, got.Status)

	_, err = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID, RetainedEarnings: "sales"})
	assert.ErrorIs(t, err, domain.ErrInvalidClassification)

	res, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID, RetainedEarnings: "capital"})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.True(t, l.balance(t, "capital").Equal(dec(10)))
}

func TestLedger_ClosePeriodConcurrently(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	period := setupTrading(t, l)
	before := l.count(t)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, before+1, l.count(t))
}

func TestLedger_OpenPeriodValidation(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()

	_, err := l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-02-01"), End: day("2024-01-01")})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-01-01"), End: day("2024-03-31")})
	require.NoError(t, err)

	_, err = l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-03-31"), End: day("2024-06-30")})
	assert.ErrorIs(t, err, domain.ErrOverlappingPeriod)

	_, err = l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-04-01"), End: day("2024-06-30")})
	require.NoError(t, err)

	periods, err := l.closing.ListPeriods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.True(t, periods[0].Start.Before(periods[1].Start))

	_, err = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: "missing"})
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestLedger_Reports(t *testing.T) {
	l := newLedger(t, true)
	ctx := context.Background()
	period := setupTrading(t, l)

	_, err := l.reports.BalanceSheet(ctx, usecase.BalanceSheetInput{PeriodID: period.ID})
	assert.ErrorIs(t, err, domain.ErrPeriodNotClosed)
	asOf := day("2024-06-30")
	_, err = l.reports.BalanceSheet(ctx, usecase.BalanceSheetInput{AsOf: &asOf})
	assert.ErrorIs(t, err, domain.ErrPeriodNotClosed)

	_, err = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
	require.NoError(t, err)

	is, err := l.reports.IncomeStatement(ctx, usecase.IncomeStatementInput{PeriodID: period.ID})
	require.NoError(t, err)
	assert.True(t, is.Income.Total.Equal(dec(450)), is.Income.Total.String())
	assert.True(t, is.Expenses.Total.Equal(dec(300)))
	assert.True(t, is.NetIncome.Equal(dec(150)))
	require.Len(t, is.Income.Lines, 2)

	sheet, err := l.reports.BalanceSheet(ctx, usecase.BalanceSheetInput{PeriodID: period.ID})
	require.NoError(t, err)
	assert.True(t, sheet.Balanced)
	assert.True(t, sheet.Assets.Total.Equal(dec(1150)))
	assert.True(t, sheet.Capital.Total.Equal(dec(1150)))
	assert.True(t, sheet.CurrentEarnings.IsZero())

	report, err := l.check.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(5), report.Entries)
}

func TestLedger_BalanceSheetShowsCurrentEarnings(t *testing.T) {
	l := newLedger(t, false)
	setupTrading(t, l)

	sheet, err := l.reports.BalanceSheet(context.Background(), usecase.BalanceSheetInput{})
	require.NoError(t, err)
	assert.True(t, sheet.Balanced)
	assert.True(t, sheet.CurrentEarnings.Equal(dec(150)))
	assert.True(t, sheet.TotalLiabilitiesAndCapital.Equal(dec(1150)))
}

func TestLedger_BalanceAsOf(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	setupTrading(t, l)

	tests := []struct {
		asOf string
		want int64
	}{
		{asOf: "2023-12-31", want: 0},
		{asOf: "2024-01-01", want: 1000},
		{asOf: "2024-03-15", want: 1500},
		{asOf: "2024-04-01", want: 1450},
		{asOf: "2024-12-31", want: 1150},
	}
	for _, tt := range tests {
		t.Run(tt.asOf, func(t *testing.T) {
			at := day(tt.asOf)
			got, err := l.balances.BalanceOf(ctx, "cash", &at)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}

	_, err := l.balances.BalanceOf(ctx, "missing", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}

func TestLedger_IncrementalFoldMatchesFullFold(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	setupTrading(t, l)

	all, err := l.accounts.ListAccounts(ctx, usecase.ListAccountsInput{Limit: 100})
	require.NoError(t, err)

	incremental := domain.NewBalanceSet(all)
	entries, err := l.entries.ListEntries(ctx, usecase.ListEntriesInput{Limit: 100})
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, incremental.Apply(e))
	}

	full, err := l.balances.Balances(ctx, usecase.BalancesInput{})
	require.NoError(t, err)
	for _, acc := range all {
		assert.True(t, incremental.Get(acc.Name).Equal(full.Get(acc.Name)), acc.Name)
	}
}

func TestLedger_BalancesIndependentOfInsertionOrder(t *testing.T) {
	postings := [][]domain.Posting{
		{dr("cash", 100), cr("equity", 100)},
		{dr("cash", 40), cr("sales", 40)},
		{dr("rent", 25), cr("cash", 25)},
		{dr("cash", 7), cr("sales", 7)},
		{dr("rent", 3), cr("cash", 3)},
	}

	final := func(order []int) map[string]decimal.Decimal {
		l := newLedger(t, false)
		l.register(t, "cash", domain.Asset)
		l.register(t, "equity", domain.Capital)
		l.register(t, "sales", domain.Income)
		l.register(t, "rent", domain.Expense)
		for _, i := range order {
			l.record(t, fmt.Sprintf("2024-01-%02d", i+1), postings[i]...)
		}
		out := map[string]decimal.Decimal{}
		for _, n := range []string{"cash", "equity", "sales", "rent"} {
			out[n] = l.balance(t, n)
		}
		return out
	}

	want := final([]int{0, 1, 2, 3, 4})
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		got := final(r.Perm(len(postings)))
		for name, b := range want {
			assert.True(t, b.Equal(got[name]), "%s: want %s got %s", name, b, got[name])
		}
	}
}

func TestLedger_ConcurrentRecording(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)

	const workers = 50
	var wg sync.WaitGroup
	seqs := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := l.entries.RecordEntry(ctx, usecase.RecordEntryInput{
				Date:     day("2024-01-01").Add(time.Duration(i) * time.Hour),
				Postings: []domain.Posting{dr("cash", int64(i+1)), cr("sales", int64(i+1))},
			})
			if err == nil {
				seqs <- e.Sequence
			}
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := map[int64]bool{}
	for s := range seqs {
		assert.False(t, seen[s], "duplicate sequence %d", s)
		seen[s] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, int64(workers), l.count(t))
	assert.True(t, l.balance(t, "cash").Equal(dec(workers*(workers+1)/2)))

	tb, err := l.reports.TrialBalance(ctx, nil)
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
}

func TestLedger_ReverseEntry(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)
	orig := l.record(t, "2024-01-05", dr("cash", 100), cr("sales", 100))

	rev, err := l.entries.ReverseEntry(ctx, usecase.ReverseEntryInput{EntryID: orig.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.EntryKindReversal, rev.Kind)
	require.NotNil(t, rev.ReversesID)
	assert.Equal(t, orig.ID, *rev.ReversesID)
	assert.True(t, l.balance(t, "cash").IsZero())

	_, err = l.entries.ReverseEntry(ctx, usecase.ReverseEntryInput{EntryID: orig.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)

	_, err = l.entries.ReverseEntry(ctx, usecase.ReverseEntryInput{EntryID: rev.ID})
	assert.ErrorIs(t, err, domain.ErrNotReversible)

	_, err = l.entries.ReverseEntry(ctx, usecase.ReverseEntryInput{EntryID: "missing"})
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Equal(t, int64(2), l.count(t))
}

func TestLedger_OpeningBalances(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	l.register(t, "cash", domain.Asset)
	l.register(t, "inventory", domain.Asset)
	l.register(t, "loan", domain.Liability)
	l.register(t, "equity", domain.Capital)

	e, err := l.entries.RecordOpeningBalances(ctx, usecase.RecordOpeningBalancesInput{
		Date: day("2024-01-01"),
		Balances: []usecase.OpeningBalance{
			{Account: "cash", Amount: dec(70)},
			{Account: "inventory", Amount: dec(30)},
			{Account: "loan", Amount: dec(40)},
			{Account: "equity", Amount: dec(60)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EntryKindOpening, e.Kind)
	assert.True(t, l.balance(t, "loan").Equal(dec(40)))
	assert.True(t, l.balance(t, "equity").Equal(dec(60)))

	_, err = l.entries.RecordOpeningBalances(ctx, usecase.RecordOpeningBalancesInput{
		Date:     day("2024-01-01"),
		Balances: []usecase.OpeningBalance{{Account: "cash", Amount: dec(10)}},
	})
	assert.ErrorIs(t, err, domain.ErrUnbalancedEntry)

	_, err = l.entries.RecordOpeningBalances(ctx, usecase.RecordOpeningBalancesInput{
		Date:     day("2024-01-01"),
		Balances: []usecase.OpeningBalance{{Account: "ghost", Amount: dec(10)}},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
}

func TestLedger_AccountLedger(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	setupTrading(t, l)

	from := day("2024-03-01")
	view, err := l.balances.AccountLedger(ctx, usecase.AccountLedgerInput{Account: "cash", From: &from})
	require.NoError(t, err)
	assert.True(t, view.Opening.Equal(dec(1000)))
	require.Len(t, view.Lines, 3)
	assert.True(t, view.Lines[0].Balance.Equal(dec(1500)))
	assert.True(t, view.Lines[2].Balance.Equal(dec(1150)))
	assert.True(t, view.Closing.Equal(dec(1150)))
	assert.True(t, view.Debits.Equal(dec(500)))
	assert.True(t, view.Credits.Equal(dec(350)))
}

func TestLedger_ImportIsAtomic(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()

	input := usecase.ImportInput{
		Accounts: []usecase.RegisterAccountInput{
			{Name: "cash", Classification: domain.Asset},
			{Name: "equity", Classification: domain.Capital},
			{Name: "sales", Classification: domain.Income},
		},
		OpeningBalances: &usecase.RecordOpeningBalancesInput{
			Date:     day("2024-01-01"),
			Balances: []usecase.OpeningBalance{{Account: "cash", Amount: dec(10)}, {Account: "equity", Amount: dec(10)}},
		},
		Entries: []usecase.RecordEntryInput{
			{Date: day("2024-01-02"), Postings: []domain.Posting{dr("cash", 5), cr("sales", 5)}},
			{Date: day("2024-01-03"), Postings: []domain.Posting{dr("cash", 5), cr("sales", 4)}},
		},
	}

	_, err := l.imports.Import(ctx, input)
	assert.ErrorIs(t, err, domain.ErrUnbalancedEntry)
	_, err = l.accounts.GetAccount(ctx, "cash")
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
	assert.Equal(t, int64(0), l.count(t))

	input.Entries = input.Entries[:1]
	res, err := l.imports.Import(ctx, input)
	require.NoError(t, err)
	assert.Len(t, res.Accounts, 3)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, int64(1), res.Entries[0].Sequence)
	assert.Equal(t, int64(2), res.Entries[1].Sequence)
	assert.True(t, l.balance(t, "cash").Equal(dec(15)))
}

func (l *ledger) openPeriod(t *testing.T, name, start, end string) *domain.Period {
	t.Helper()
	p, err := l.closing.OpenPeriod(context.Background(), usecase.OpenPeriodInput{Name: name, Start: day(start), End: day(end)})
	require.NoError(t, err)
	return p
}

func setupMonthly(t *testing.T, l *ledger) {
	t.Helper()
	l.register(t, "cash", domain.Asset)
	l.register(t, "sales", domain.Income)
	_, err := l.accounts.RegisterAccount(context.Background(), usecase.RegisterAccountInput{Name: "retained", Classification: domain.Capital, RetainedEarnings: true})
	require.NoError(t, err)
}

func TestLedger_PeriodsCloseInOrder(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	setupMonthly(t, l)

	jan := l.openPeriod(t, "Jan", "2024-01-01", "2024-01-31")
	feb := l.openPeriod(t, "Feb", "2024-02-01", "2024-02-29")
	l.record(t, "2024-01-10", dr("cash", 100), cr("sales", 100))

	before := l.count(t)
	_, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: feb.ID})
	assert.ErrorIs(t, err, domain.ErrPeriodNotClosed)
	assert.Equal(t, before, l.count(t))

	got, err := l.closing.GetPeriod(ctx, feb.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodStatusOpen, got.Status)

	res, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: jan.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)

	res, err = l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: feb.ID})
	require.NoError(t, err)
	assert.Nil(t, res.Entry, "january income must not be closed twice")

	assert.True(t, l.balance(t, "sales").IsZero(), "sales = %s", l.balance(t, "sales"))
	assert.True(t, l.balance(t, "retained").Equal(dec(100)), "retained = %s", l.balance(t, "retained"))
	assert.True(t, l.balance(t, "cash").Equal(dec(100)))
}

func TestLedger_ClosedBooksRejectEarlierDates(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	setupMonthly(t, l)

	jan := l.openPeriod(t, "Jan", "2024-01-01", "2024-01-31")
	mar := l.openPeriod(t, "Mar", "2024-03-01", "2024-03-31")
	l.record(t, "2024-01-10", dr("cash", 100), cr("sales", 100))

	_, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: jan.ID})
	require.NoError(t, err)

	// February is not covered by any period and is still after the closed books.
	l.record(t, "2024-02-10", dr("cash", 50), cr("sales", 50))

	res, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: mar.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.True(t, l.balance(t, "retained").Equal(dec(150)))

	before := l.count(t)
	for _, d := range []string{"2023-12-31", "2024-02-15", "2024-03-31"} {
		_, err := l.entries.RecordEntry(ctx, usecase.RecordEntryInput{Date: day(d), Postings: []domain.Posting{dr("cash", 1), cr("sales", 1)}})
		assert.ErrorIs(t, err, domain.ErrPeriodClosed, d)
	}
	assert.Equal(t, before, l.count(t))

	_, err = l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Start: day("2024-02-01"), End: day("2024-02-29")})
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	l.record(t, "2024-04-01", dr("cash", 1), cr("sales", 1))
	assert.True(t, l.balance(t, "sales").Equal(dec(1)))
	assert.True(t, l.balance(t, "retained").Equal(dec(150)))
}

func TestLedger_LastDayBelongsToPeriod(t *testing.T) {
	l := newLedger(t, false)
	ctx := context.Background()
	setupMonthly(t, l)

	jan := l.openPeriod(t, "Jan", "2024-01-01", "2024-01-31")
	l.record(t, "2024-01-10", dr("cash", 100), cr("sales", 100))

	late := day("2024-01-31").Add(15 * time.Hour)
	e, err := l.entries.RecordEntry(ctx, usecase.RecordEntryInput{Date: late, Postings: []domain.Posting{dr("cash", 12), cr("sales", 12)}})
	require.NoError(t, err)
	assert.True(t, e.Date.Equal(day("2024-01-31")))

	is, err := l.reports.IncomeStatement(ctx, usecase.IncomeStatementInput{PeriodID: jan.ID})
	require.NoError(t, err)
	assert.True(t, is.Income.Total.Equal(dec(112)), is.Income.Total.String())

	res, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: jan.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	require.Len(t, res.Entry.Postings, 2)
	for _, p := range res.Entry.Postings {
		assert.True(t, p.Amount.Equal(dec(112)), "%s %s %s", p.Account, p.Side, p.Amount)
	}

	_, err = l.entries.RecordEntry(ctx, usecase.RecordEntryInput{
		Date:     day("2024-01-31").Add(16 * time.Hour),
		Postings: []domain.Posting{dr("cash", 12), cr("sales", 12)},
	})
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)
	assert.True(t, l.balance(t, "sales").IsZero())
	assert.True(t, l.balance(t, "retained").Equal(dec(112)))
}
