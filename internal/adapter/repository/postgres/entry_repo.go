package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/infrastructure/postgres/generated"
	"github.com/iho/bookkeeper/internal/usecase"
)

const reversesIDKey = "journal_entries_reverses_id_key"

// iterateEntries streams entries joined with their postings in journal
// order. Kind and account filters are applied while grouping.
const iterateEntries = `
SELECT e.id, e.sequence, e.entry_date, e.description, e.kind, e.reverses_id, e.metadata, e.created_at,
       p.account, p.side, p.amount
FROM journal_entries e
JOIN postings p ON p.entry_id = e.id
WHERE ($1::timestamptz IS NULL OR e.entry_date >= $1)
  AND ($2::timestamptz IS NULL OR e.entry_date <= $2)
ORDER BY e.entry_date, e.sequence, p.line`

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{db: db, queries: generated.New(db)}
}

// Append inserts the entry and its postings and sets entry.Sequence.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}
	queries := r.queries.WithTx(ptx)

	var metadata []byte
	if entry.Metadata != nil {
		if metadata, err = json.Marshal(entry.Metadata); err != nil {
			return fmt.Errorf("%w: metadata: %v", domain.ErrInvalidPosting, err)
		}
	}

	seq, err := queries.InsertJournalEntry(ctx, generated.InsertJournalEntryParams{
		ID:          entry.ID,
		EntryDate:   timeToPgTimestamptz(entry.Date),
		Description: entry.Description,
		Kind:        string(entry.Kind),
		ReversesID:  stringPtrToText(entry.ReversesID),
		Metadata:    metadata,
		CreatedAt:   timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return mapEntryError(err)
	}

	for i, p := range entry.Postings {
		err := queries.CreatePosting(ctx, generated.CreatePostingParams{
			EntryID: entry.ID,
			Line:    int32(i),
			Account: p.Account,
			Side:    string(p.Side),
			Amount:  decimalToNumeric(p.Amount),
		})
		if err != nil {
			return mapEntryError(err)
		}
	}

	entry.Sequence = seq
	return nil
}

// GetByID retrieves an entry with its postings.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row, err := r.queries.GetJournalEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
		}
		return nil, err
	}

	return r.withPostings(ctx, r.queries, row)
}

// FindReversal returns the entry that reverses id.
func (r *EntryRepository) FindReversal(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}
	queries := r.queries.WithTx(ptx)

	row, err := queries.GetReversalOf(ctx, pgtype.Text{String: id, Valid: true})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no reversal of %s", domain.ErrEntryNotFound, id)
		}
		return nil, err
	}

	return r.withPostings(ctx, queries, row)
}

// Iterate streams committed entries matching filter in journal order.
func (r *EntryRepository) Iterate(ctx context.Context, filter domain.EntryFilter) iter.Seq2[*domain.JournalEntry, error] {
	return func(yield func(*domain.JournalEntry, error) bool) {
		rows, err := r.db.Query(ctx, iterateEntries, optionalTimestamptz(filter.From), optionalTimestamptz(filter.To))
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		var current *domain.JournalEntry
		emit := func() bool {
			if current == nil || !filter.Match(current) {
				return true
			}
			return yield(current, nil)
		}

		for rows.Next() {
			var (
				row     generated.JournalEntry
				posting generated.Posting
			)
			err := rows.Scan(
				&row.ID,
				&row.Sequence,
				&row.EntryDate,
				&row.Description,
				&row.Kind,
				&row.ReversesID,
				&row.Metadata,
				&row.CreatedAt,
				&posting.Account,
				&posting.Side,
				&posting.Amount,
			)
			if err != nil {
				yield(nil, err)
				return
			}

			if current == nil || current.ID != row.ID {
				if !emit() {
					return
				}
				if current, err = rowToEntry(row); err != nil {
					yield(nil, err)
					return
				}
			}
			current.Postings = append(current.Postings, rowToPosting(posting))
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
			return
		}
		emit()
	}
}

// Count returns the number of recorded entries.
func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	return r.queries.CountJournalEntries(ctx)
}

// LastSequence returns the highest recorded sequence number.
func (r *EntryRepository) LastSequence(ctx context.Context) (int64, error) {
	return r.queries.GetLastSequence(ctx)
}

func (r *EntryRepository) withPostings(ctx context.Context, queries *generated.Queries, row generated.JournalEntry) (*domain.JournalEntry, error) {
	entry, err := rowToEntry(row)
	if err != nil {
		return nil, err
	}

	postings, err := queries.GetPostingsByEntryID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range postings {
		entry.Postings = append(entry.Postings, rowToPosting(p))
	}

	return entry, nil
}

func rowToEntry(row generated.JournalEntry) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{
		ID:          row.ID,
		Sequence:    row.Sequence,
		Date:        row.EntryDate.Time.UTC(),
		Description: row.Description,
		Kind:        domain.EntryKind(row.Kind),
		ReversesID:  textToPtr(row.ReversesID),
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}

	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("entry %s metadata: %w", row.ID, err)
		}
	}

	return entry, nil
}

func rowToPosting(p generated.Posting) domain.Posting {
	return domain.Posting{
		Account: p.Account,
		Side:    domain.Side(p.Side),
		Amount:  numericToDecimal(p.Amount),
	}
}

func mapEntryError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == reversesIDKey:
		return domain.ErrAlreadyReversed
	case pgErr.Code == pgErrForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, pgErr.Detail)
	}

	return err
}
