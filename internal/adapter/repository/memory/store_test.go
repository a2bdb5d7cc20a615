package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bookkeeper/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(id string, d string) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:   id,
		Date: date(d),
		Kind: domain.EntryKindBusiness,
		Postings: []domain.Posting{
			{Account: "cash", Side: domain.Debit, Amount: decimal.NewFromInt(10)},
			{Account: "sales", Side: domain.Credit, Amount: decimal.NewFromInt(10)},
		},
	}
}

func collect(t *testing.T, repo *EntryRepository, filter domain.EntryFilter) []string {
	t.Helper()
	var ids []string
	for e, err := range repo.Iterate(context.Background(), filter) {
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	return ids
}

func TestTx_StagedWritesInvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	accounts := NewAccountRepository(store)
	entries := NewEntryRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, accounts.Create(ctx, tx, &domain.Account{Name: "cash", Classification: domain.Asset, Active: true}))
	require.NoError(t, entries.Append(ctx, tx, entry("e1", "2024-01-01")))

	_, err = accounts.GetByName(ctx, "cash")
	assert.ErrorIs(t, err, domain.ErrUnknownAccount)
	n, _ := entries.Count(ctx)
	assert.Equal(t, int64(0), n)

	staged, err := accounts.GetByNamesForUpdate(ctx, tx, []string{"cash"})
	require.NoError(t, err)
	assert.Len(t, staged, 1)

	require.NoError(t, tx.Commit(ctx))

	_, err = accounts.GetByName(ctx, "cash")
	assert.NoError(t, err)
	n, _ = entries.Count(ctx)
	assert.Equal(t, int64(1), n)
}

func TestTx_RollbackDiscards(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	entries := NewEntryRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, entries.Append(ctx, tx, entry("e1", "2024-01-01")))
	require.NoError(t, tx.Rollback(ctx))

	n, _ := entries.Count(ctx)
	assert.Equal(t, int64(0), n)
	seq, _ := entries.LastSequence(ctx)
	assert.Equal(t, int64(0), seq)

	assert.ErrorIs(t, entries.Append(ctx, tx, entry("e2", "2024-01-01")), ErrTxDone)
	assert.NoError(t, tx.Rollback(ctx))
}

func TestTxManager_SingleWriter(t *testing.T) {
	ctx := context.Background()
	txm := NewTxManager(NewStore())

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = txm.Begin(waitCtx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	require.NoError(t, tx.Commit(ctx))

	tx2, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestEntryRepository_SequenceAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewEntryRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	late := entry("late", "2024-03-01")
	early := entry("early", "2024-01-01")
	require.NoError(t, repo.Append(ctx, tx, late))
	require.NoError(t, repo.Append(ctx, tx, early))
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, int64(1), late.Sequence)
	assert.Equal(t, int64(2), early.Sequence)

	tx, err = txm.Begin(ctx)
	require.NoError(t, err)
	sameDay := entry("same-day", "2024-01-01")
	require.NoError(t, repo.Append(ctx, tx, sameDay))
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, int64(3), sameDay.Sequence)

	assert.Equal(t, []string{"early", "same-day", "late"}, collect(t, repo, domain.EntryFilter{}))

	to := date("2024-02-01")
	assert.Equal(t, []string{"early", "same-day"}, collect(t, repo, domain.EntryFilter{To: &to}))

	from := date("2024-02-01")
	assert.Equal(t, []string{"late"}, collect(t, repo, domain.EntryFilter{From: &from}))
}

func TestEntryRepository_IterateIsRestartable(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewEntryRepository(store)

	tx, _ := txm.Begin(ctx)
	require.NoError(t, repo.Append(ctx, tx, entry("a", "2024-01-01")))
	require.NoError(t, tx.Commit(ctx))

	seq := repo.Iterate(ctx, domain.EntryFilter{})
	first := 0
	for _, err := range seq {
		require.NoError(t, err)
		first++
	}

	tx, _ = txm.Begin(ctx)
	require.NoError(t, repo.Append(ctx, tx, entry("b", "2024-01-02")))
	require.NoError(t, tx.Commit(ctx))

	second := 0
	for _, err := range seq {
		require.NoError(t, err)
		second++
	}

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestEntryRepository_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewEntryRepository(store)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	e := entry("a", "2024-01-01")
	e.Metadata = map[string]any{"ref": "inv-1"}
	require.NoError(t, repo.Append(ctx, tx, e))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	got.Postings[0].Amount = decimal.NewFromInt(999)
	got.Metadata["ref"] = "changed"

	for it, err := range repo.Iterate(ctx, domain.EntryFilter{}) {
		require.NoError(t, err)
		it.Postings[1].Account = "changed"
	}

	again, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, again.Postings[0].Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "sales", again.Postings[1].Account)
	assert.Equal(t, "inv-1", again.Metadata["ref"])
}

func TestEntryRepository_FindReversal(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewEntryRepository(store)

	tx, _ := txm.Begin(ctx)
	require.NoError(t, repo.Append(ctx, tx, entry("orig", "2024-01-01")))
	rev := entry("rev", "2024-01-02")
	id := "orig"
	rev.ReversesID = &id
	require.NoError(t, repo.Append(ctx, tx, rev))

	found, err := repo.FindReversal(ctx, tx, "orig")
	require.NoError(t, err)
	assert.Equal(t, "rev", found.ID)
	require.NoError(t, tx.Commit(ctx))

	tx, _ = txm.Begin(ctx)
	defer tx.Rollback(ctx)
	found, err = repo.FindReversal(ctx, tx, "orig")
	require.NoError(t, err)
	assert.Equal(t, "rev", found.ID)

	_, err = repo.FindReversal(ctx, tx, "rev")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestPeriodRepository_FindByDate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewPeriodRepository(store)

	q1 := &domain.Period{ID: "q1", Name: "Q1", Start: date("2024-01-01"), End: date("2024-03-31"), Status: domain.PeriodStatusOpen}

	tx, _ := txm.Begin(ctx)
	require.NoError(t, repo.Create(ctx, tx, q1))

	_, err := repo.FindByDate(ctx, nil, date("2024-02-01"))
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)

	p, err := repo.FindByDate(ctx, tx, date("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, "q1", p.ID)
	require.NoError(t, tx.Commit(ctx))

	p, err = repo.FindByDate(ctx, nil, date("2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, "q1", p.ID)

	_, err = repo.FindByDate(ctx, nil, date("2024-04-01"))
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)

	tx, _ = txm.Begin(ctx)
	p.Status = domain.PeriodStatusClosed
	require.NoError(t, repo.Update(ctx, tx, p))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByID(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodStatusClosed, got.Status)
}

func TestAccountRepository_DuplicateAndRetainedEarnings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewAccountRepository(store)

	tx, _ := txm.Begin(ctx)
	_, err := repo.FindRetainedEarnings(ctx, tx)
	assert.ErrorIs(t, err, domain.ErrNoRetainedEarnings)

	require.NoError(t, repo.Create(ctx, tx, &domain.Account{Name: "re", Classification: domain.Capital, RetainedEarnings: true}))
	assert.ErrorIs(t, repo.Create(ctx, tx, &domain.Account{Name: "re", Classification: domain.Capital}), domain.ErrDuplicateAccount)

	re, err := repo.FindRetainedEarnings(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, "re", re.Name)
	require.NoError(t, tx.Commit(ctx))

	tx, _ = txm.Begin(ctx)
	assert.ErrorIs(t, repo.Create(ctx, tx, &domain.Account{Name: "re", Classification: domain.Capital}), domain.ErrDuplicateAccount)
	require.NoError(t, repo.SetActive(ctx, tx, "re", false, time.Now()))
	require.NoError(t, tx.Commit(ctx))

	acc, err := repo.GetByName(ctx, "re")
	require.NoError(t, err)
	assert.False(t, acc.Active)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txm := NewTxManager(store)
	repo := NewOutboxRepository(store)

	tx, _ := txm.Begin(ctx)
	require.NoError(t, repo.Create(ctx, tx, &domain.OutboxEvent{ID: "ev1"}))
	require.NoError(t, repo.Create(ctx, tx, &domain.OutboxEvent{ID: "ev2"}))
	require.NoError(t, tx.Commit(ctx))

	events, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, repo.MarkPublished(ctx, "ev1", past))

	events, _ = repo.GetUnpublished(ctx, 10)
	require.Len(t, events, 1)
	assert.Equal(t, "ev2", events[0].ID)

	require.NoError(t, repo.DeletePublished(ctx, time.Now()))
	assert.Len(t, store.outbox, 1)
}
