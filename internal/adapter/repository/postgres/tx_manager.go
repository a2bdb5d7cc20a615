package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bookkeeper/internal/usecase"
)

// ledgerLockKey is the advisory lock that serialises journal writers.
const ledgerLockKey int64 = 0x6c6564676572

// ErrForeignTx is returned when a repository receives a transaction that
// was not started by TxManager.
var ErrForeignTx = errors.New("transaction was not started by the postgres manager")

type beginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Every transaction takes
// the ledger advisory lock before doing anything else, so writers commit
// one at a time and entry sequence numbers stay gapless.
type TxManager struct {
	db          beginner
	lockTimeout time.Duration
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{db: pool}
}

// WithLockTimeout bounds the wait for the ledger lock. A writer that gives
// up fails with SQLSTATE 55P03, which the retrier treats as transient.
// Zero waits forever.
func (m *TxManager) WithLockTimeout(d time.Duration) *TxManager {
	m.lockTimeout = d
	return m
}

// Begin opens a transaction and blocks until it holds the ledger lock.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger transaction: %w", err)
	}

	if err := m.lock(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (m *TxManager) lock(ctx context.Context, tx pgx.Tx) error {
	if m.lockTimeout > 0 {
		ms := strconv.FormatInt(m.lockTimeout.Milliseconds(), 10) + "ms"
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", ms); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerLockKey); err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	return nil
}

// Tx is a pgx transaction holding the ledger lock.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction and releases the ledger lock.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction. Rolling back a finished transaction is
// a no-op, so it is safe to defer.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

func pgxTx(tx usecase.Transaction) (pgx.Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTx
	}
	return t.tx, nil
}
