package usecase

import (
	"context"
	"iter"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountRepository defines data access for the account registry.
type AccountRepository interface {
	// Create fails with domain.ErrDuplicateAccount if the name is taken.
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	// GetByName fails with domain.ErrUnknownAccount.
	GetByName(ctx context.Context, name string) (*domain.Account, error)
	// GetByNamesForUpdate returns the accounts visible to tx; missing names are skipped.
	GetByNamesForUpdate(ctx context.Context, tx Transaction, names []string) ([]*domain.Account, error)
	// FindRetainedEarnings fails with domain.ErrNoRetainedEarnings.
	FindRetainedEarnings(ctx context.Context, tx Transaction) (*domain.Account, error)
	SetActive(ctx context.Context, tx Transaction, name string, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
}

// EntryRepository defines data access for the append-only journal.
type EntryRepository interface {
	// Append assigns the next sequence number to entry and stores it.
	Append(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	// GetByID fails with domain.ErrEntryNotFound.
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	// FindReversal returns the entry reversing id, or domain.ErrEntryNotFound.
	FindReversal(ctx context.Context, tx Transaction, id string) (*domain.JournalEntry, error)
	// Iterate lazily yields committed entries ordered by date, then sequence.
	// Every range over the returned sequence re-reads the journal.
	Iterate(ctx context.Context, filter domain.EntryFilter) iter.Seq2[*domain.JournalEntry, error]
	Count(ctx context.Context) (int64, error)
	// LastSequence returns the sequence of the newest committed entry, 0 if empty.
	LastSequence(ctx context.Context) (int64, error)
}

// PeriodRepository defines data access for accounting periods.
type PeriodRepository interface {
	Create(ctx context.Context, tx Transaction, period *domain.Period) error
	// GetByID fails with domain.ErrPeriodNotFound.
	GetByID(ctx context.Context, id string) (*domain.Period, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Period, error)
	// FindByDate returns the period containing date, or domain.ErrPeriodNotFound.
	// A nil tx reads committed state.
	FindByDate(ctx context.Context, tx Transaction, date time.Time) (*domain.Period, error)
	Update(ctx context.Context, tx Transaction, period *domain.Period) error
	List(ctx context.Context) ([]*domain.Period, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a writer transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle. At most one
// transaction is active at a time; Begin blocks until the previous one ends.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response. A nil
	// response releases the key.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// MetricsRecorder receives ledger business metrics.
type MetricsRecorder interface {
	AccountRegistered(classification domain.Classification)
	EntryRecorded(kind domain.EntryKind, postings int, duration time.Duration)
	EntryRejected(reason string)
	PeriodClosed(postings int)
}
