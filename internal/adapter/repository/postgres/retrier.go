package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes a writer transaction may hit and survive on a second run.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"

	// sequenceConstraint guards journal_entries.sequence. A clash means two
	// writers computed the same next sequence; the second must run again.
	sequenceConstraint = "journal_entries_sequence_key"
)

// RetryPolicy bounds how long a writer transaction is retried.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy suits the advisory-lock writer: contention is short.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	MaxElapsedTime:  10 * time.Second,
}

// Retrier implements usecase.Retrier with exponential backoff. Only
// transient failures are retried; domain errors surface on the first run.
type Retrier struct {
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetrier creates a Retrier with DefaultRetryPolicy.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierWithPolicy(DefaultRetryPolicy, logger)
}

// NewRetrierWithPolicy creates a Retrier with an explicit policy.
func NewRetrierWithPolicy(policy RetryPolicy, logger zerolog.Logger) *Retrier {
	return &Retrier{
		policy: policy,
		logger: logger.With().Str("component", "retrier").Logger(),
	}
}

// Retry runs operation until it succeeds, fails permanently, or the policy
// is exhausted. The last error is returned unwrapped.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = r.policy.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.policy.MaxRetries)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil || !isRetryableError(err) {
			return permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("transient database error, retrying writer transaction")
	})
}

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// isRetryableError reports whether err is a transient PostgreSQL failure.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
			return true
		case pgErrUniqueViolation:
			return pgErr.ConstraintName == sequenceConstraint
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
