package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	assert.NoError(t, pool.ExpectationsWereMet())
}

func expectLedgerLock(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(ledgerLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

// beginTx starts a transaction on the mock pool, consuming the begin and
// lock expectations.
func beginTx(t *testing.T, mockPool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	mockPool.ExpectBegin()
	expectLedgerLock(mockPool)

	tx, err := (&TxManager{db: mockPool}).Begin(context.Background())
	require.NoError(t, err)
	return tx.(*Tx)
}

func TestTxManager_BeginTakesLedgerLock(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectCommit()
	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManager_LockTimeoutIsSetFirst(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectExec("SELECT set_config").WithArgs("1500ms").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	expectLedgerLock(pool)
	pool.ExpectRollback()

	m := (&TxManager{db: pool}).WithLockTimeout(1500 * time.Millisecond)
	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManager_BeginError(t *testing.T) {
	pool := newMockPool(t)
	cause := errors.New("too many connections")
	pool.ExpectBegin().WillReturnError(cause)

	_, err := (&TxManager{db: pool}).Begin(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "begin ledger transaction")
}

func TestTxManager_LockErrorRollsBack(t *testing.T) {
	pool := newMockPool(t)
	cause := errors.New("canceling statement due to lock timeout")
	pool.ExpectBegin()
	pool.ExpectExec("SELECT pg_advisory_xact_lock").WithArgs(ledgerLockKey).WillReturnError(cause)
	pool.ExpectRollback()

	_, err := (&TxManager{db: pool}).Begin(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "acquire ledger lock")
	assertExpectations(t, pool)
}

func TestRepositoriesRejectForeignTx(t *testing.T) {
	repo := NewAccountRepository(newMockPool(t))

	_, err := repo.FindRetainedEarnings(context.Background(), foreignTx{})
	assert.ErrorIs(t, err, ErrForeignTx)
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }
