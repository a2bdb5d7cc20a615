package postgres_test

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bookkeeper/internal/adapter/repository/postgres"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/idgen"
	infra "github.com/iho/bookkeeper/internal/infrastructure/postgres"
	"github.com/iho/bookkeeper/internal/usecase"
)

// ledger is the full use case stack over a real database.
type ledger struct {
	pool     *pgxpool.Pool
	accounts *usecase.AccountUseCase
	entries  *usecase.EntryUseCase
	closing  *usecase.ClosingUseCase
	balances *usecase.BalanceUseCase
	checker  *usecase.LedgerUseCase
}

// newLedger connects to TEST_DATABASE_URL, migrates and empties every
// table. Tests are skipped when the variable is unset.
func newLedger(t *testing.T) *ledger {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, infra.NewMigrator(dbURL, "", zerolog.Nop()).Up())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.NewPoolWithConfig(ctx, infra.PoolConfig{DatabaseURL: dbURL, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE outbox_events, periods, postings, journal_entries, accounts`)
	require.NoError(t, err)

	txm := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	periodRepo := postgres.NewPeriodRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	retrier := postgres.NewRetrier(zerolog.Nop())
	ids := idgen.NewULIDGenerator()

	return &ledger{
		pool:     pool,
		accounts: usecase.NewAccountUseCase(txm, accountRepo, outboxRepo, ids),
		entries:  usecase.NewEntryUseCase(txm, accountRepo, entryRepo, periodRepo, outboxRepo, ids).WithRetrier(retrier),
		closing:  usecase.NewClosingUseCase(txm, accountRepo, entryRepo, periodRepo, outboxRepo, ids).WithRetrier(retrier),
		balances: usecase.NewBalanceUseCase(accountRepo, entryRepo, nil),
		checker:  usecase.NewLedgerUseCase(accountRepo, entryRepo),
	}
}

func (l *ledger) register(t *testing.T, name string, c domain.Classification, retained bool) {
	t.Helper()
	_, err := l.accounts.RegisterAccount(context.Background(), usecase.RegisterAccountInput{
		Name: name, Classification: c, RetainedEarnings: retained,
	})
	require.NoError(t, err)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func amount(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func sale(date string, n int64) usecase.RecordEntryInput {
	return usecase.RecordEntryInput{
		Date:        day(date),
		Description: "sale",
		Postings: []domain.Posting{
			{Account: "cash", Side: domain.Debit, Amount: amount(n)},
			{Account: "sales", Side: domain.Credit, Amount: amount(n)},
		},
	}
}

func TestIntegration_CloseAndReverse(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	l.register(t, "cash", domain.Asset, false)
	l.register(t, "sales", domain.Income, false)
	l.register(t, "retained", domain.Capital, true)

	first, err := l.entries.RecordEntry(ctx, sale("2024-01-10", 300))
	require.NoError(t, err)
	_, err = l.entries.RecordEntry(ctx, sale("2024-01-20", 200))
	require.NoError(t, err)

	period, err := l.closing.OpenPeriod(ctx, usecase.OpenPeriodInput{Name: "Jan", Start: day("2024-01-01"), End: day("2024-01-31")})
	require.NoError(t, err)

	result, err := l.closing.ClosePeriod(ctx, usecase.ClosePeriodInput{PeriodID: period.ID})
	require.NoError(t, err)
	require.NotNil(t, result.Entry)
	assert.Equal(t, domain.PeriodStatusClosed, result.Period.Status)

	retained, err := l.balances.BalanceOf(ctx, "retained", nil)
	require.NoError(t, err)
	assert.True(t, retained.Equal(amount(500)), "retained = %s", retained)

	sales, err := l.balances.BalanceOf(ctx, "sales", nil)
	require.NoError(t, err)
	assert.True(t, sales.IsZero(), "sales = %s", sales)

	_, err = l.entries.RecordEntry(ctx, sale("2024-01-25", 10))
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	feb := day("2024-02-01")
	reversal, err := l.entries.ReverseEntry(ctx, usecase.ReverseEntryInput{EntryID: first.ID, Date: &feb})
	require.NoError(t, err)
	assert.Equal(t, domain.EntryKindReversal, reversal.Kind)

	_, err = l.entries.ReverseEntry(ctx, usecase.ReverseEntryInput{EntryID: first.ID, Date: &feb})
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)

	cash, err := l.balances.BalanceOf(ctx, "cash", nil)
	require.NoError(t, err)
	assert.True(t, cash.Equal(amount(200)), "cash = %s", cash)

	report, err := l.checker.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(4), report.Entries)
}

func TestIntegration_ConcurrentEntriesGetDistinctSequences(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	l.register(t, "cash", domain.Asset, false)
	l.register(t, "sales", domain.Income, false)

	const writers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs []int64
		errs []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := l.entries.RecordEntry(ctx, sale("2024-03-01", 1))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seqs = append(seqs, e.Sequence)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, s := range seqs {
		assert.Equal(t, int64(i+1), s)
	}

	cash, err := l.balances.BalanceOf(ctx, "cash", nil)
	require.NoError(t, err)
	assert.True(t, cash.Equal(amount(writers)), "cash = %s", cash)
}

func TestIntegration_DuplicateAccountAndUnknownPosting(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	l.register(t, "cash", domain.Asset, false)

	_, err := l.accounts.RegisterAccount(ctx, usecase.RegisterAccountInput{Name: "cash", Classification: domain.Asset})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)

	_, err = l.entries.RecordEntry(ctx, sale("2024-01-01", 5))
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)

	var n int
	require.NoError(t, l.pool.QueryRow(ctx, `SELECT count(*) FROM journal_entries`).Scan(&n))
	assert.Zero(t, n)
}
