package usecase

import (
	"context"
	"time"

	"github.com/iho/bookkeeper/internal/domain"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a writer transaction
	// This prevents a stuck writer from blocking the journal
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBalanceCacheTTL is how long computed balances stay cached
	DefaultBalanceCacheTTL = 5 * time.Minute
)

type noopRetrier struct{}

func (noopRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type noopMetrics struct{}

func (noopMetrics) AccountRegistered(domain.Classification) {}
func (noopMetrics) EntryRecorded(domain.EntryKind, int, time.Duration) {}
func (noopMetrics) EntryRejected(string) {}
func (noopMetrics) PeriodClosed(int) {}
