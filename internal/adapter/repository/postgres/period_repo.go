package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/postgres/generated"
	"github.com/iho/bookkeeper/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	queries *generated.Queries
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(db generated.DBTX) *PeriodRepository {
	return &PeriodRepository{queries: generated.New(db)}
}

// Create inserts a new period.
func (r *PeriodRepository) Create(ctx context.Context, tx usecase.Transaction, period *domain.Period) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).CreatePeriod(ctx, generated.CreatePeriodParams{
		ID:             period.ID,
		Name:           period.Name,
		StartsAt:       timeToPgTimestamptz(period.Start),
		EndsAt:         timeToPgTimestamptz(period.End),
		Status:         string(period.Status),
		ClosingEntryID: stringPtrToText(period.ClosingEntryID),
		ClosedAt:       optionalTimestamptz(period.ClosedAt),
		CreatedAt:      timeToPgTimestamptz(period.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(period.UpdatedAt),
	})
}

// GetByID retrieves a period.
func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*domain.Period, error) {
	row, err := r.queries.GetPeriodByID(ctx, id)
	return periodResult(row, err, id)
}

// GetByIDForUpdate retrieves a period and locks its row.
func (r *PeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Period, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(ptx).GetPeriodByIDForUpdate(ctx, id)
	return periodResult(row, err, id)
}

// FindByDate returns the period containing date. A nil tx reads outside
// any transaction.
func (r *PeriodRepository) FindByDate(ctx context.Context, tx usecase.Transaction, date time.Time) (*domain.Period, error) {
	queries := r.queries
	if tx != nil {
		ptx, err := pgxTx(tx)
		if err != nil {
			return nil, err
		}
		queries = queries.WithTx(ptx)
	}

	row, err := queries.GetPeriodByDate(ctx, timeToPgTimestamptz(date))
	return periodResult(row, err, date.Format(time.DateOnly))
}

// Update writes the mutable fields of a period.
func (r *PeriodRepository) Update(ctx context.Context, tx usecase.Transaction, period *domain.Period) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(ptx).UpdatePeriod(ctx, generated.UpdatePeriodParams{
		ID:             period.ID,
		Status:         string(period.Status),
		ClosingEntryID: stringPtrToText(period.ClosingEntryID),
		ClosedAt:       optionalTimestamptz(period.ClosedAt),
		UpdatedAt:      timeToPgTimestamptz(period.UpdatedAt),
	})
}

// List returns every period ordered by start.
func (r *PeriodRepository) List(ctx context.Context) ([]*domain.Period, error) {
	rows, err := r.queries.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}

	periods := make([]*domain.Period, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, rowToPeriod(row))
	}

	return periods, nil
}

func periodResult(row generated.Period, err error, key string) (*domain.Period, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPeriodNotFound, key)
		}
		return nil, err
	}
	return rowToPeriod(row), nil
}

func rowToPeriod(row generated.Period) *domain.Period {
	return &domain.Period{
		ID:             row.ID,
		Name:           row.Name,
		Start:          row.StartsAt.Time.UTC(),
		End:            row.EndsAt.Time.UTC(),
		Status:         domain.PeriodStatus(row.Status),
		ClosingEntryID: textToPtr(row.ClosingEntryID),
		ClosedAt:       timestamptzToPtr(row.ClosedAt),
		CreatedAt:      row.CreatedAt.Time.UTC(),
		UpdatedAt:      row.UpdatedAt.Time.UTC(),
	}
}
