package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/postgres/generated"
	"github.com/iho/bookkeeper/internal/usecase"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"

	retainedEarningsIndex = "accounts_one_retained_earnings"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository. db is normally a
// *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(ptx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:               account.ID,
		Name:             account.Name,
		Classification:   string(account.Classification),
		Contra:           account.Contra,
		ContraOf:         stringToText(account.ContraOf),
		RetainedEarnings: account.RetainedEarnings,
		Active:           account.Active,
		CreatedAt:        timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(account.UpdatedAt),
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == retainedEarningsIndex:
			return domain.ErrRetainedEarningsExists
		case pgErr.Code == pgErrUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, account.Name)
		case pgErr.Code == pgErrForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, account.ContraOf)
		}
	}

	return err
}

// GetByName retrieves an account by name.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, name)
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByNamesForUpdate locks and returns the named accounts. Names that do
// not exist are left out.
func (r *AccountRepository) GetByNamesForUpdate(ctx context.Context, tx usecase.Transaction, names []string) ([]*domain.Account, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	rows, err := r.queries.WithTx(ptx).GetAccountsByNamesForUpdate(ctx, names)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// FindRetainedEarnings returns the designated retained earnings account.
func (r *AccountRepository) FindRetainedEarnings(ctx context.Context, tx usecase.Transaction) (*domain.Account, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(ptx).GetRetainedEarningsAccount(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoRetainedEarnings
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// SetActive flips the active flag of an account.
func (r *AccountRepository) SetActive(ctx context.Context, tx usecase.Transaction, name string, active bool, updatedAt time.Time) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	n, err := r.queries.WithTx(ptx).SetAccountActive(ctx, generated.SetAccountActiveParams{
		Name:      name,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, name)
	}

	return nil
}

// List lists accounts by name with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// ListAll returns the whole chart of accounts.
func (r *AccountRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.queries.ListAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:               row.ID,
		Name:             row.Name,
		Classification:   domain.Classification(row.Classification),
		Contra:           row.Contra,
		ContraOf:         row.ContraOf.String,
		RetainedEarnings: row.RetainedEarnings,
		Active:           row.Active,
		CreatedAt:        row.CreatedAt.Time.UTC(),
		UpdatedAt:        row.UpdatedAt.Time.UTC(),
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).Set(d.Coefficient()), Exp: d.Exponent(), Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timeToPgTimestamptz(*t)
}

func timestamptzToPtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time.UTC()
	return &t
}

func stringToText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func stringPtrToText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textToPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
