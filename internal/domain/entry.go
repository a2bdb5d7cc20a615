package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the debit or credit side of a posting.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// ParseSide parses "debit"/"dr" or "credit"/"cr".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debit", "dr":
		return Debit, nil
	case "credit", "cr":
		return Credit, nil
	default:
		return "", fmt.Errorf("%w: unknown side %q", ErrInvalidPosting, s)
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// EntryKind tells how an entry came into the journal.
type EntryKind string

const (
	EntryKindBusiness EntryKind = "business"
	EntryKindOpening  EntryKind = "opening"
	EntryKindReversal EntryKind = "reversal"
	EntryKindClosing  EntryKind = "closing"
)

// Posting is one line of a journal entry. It is owned by its entry.
type Posting struct {
	Account string
	Side    Side
	Amount  decimal.Decimal
}

// JournalEntry is a dated, balanced set of postings. Entries are immutable
// once recorded; corrections are made with reversing entries.
type JournalEntry struct {
	CreatedAt   time.Time
	Date        time.Time
	Metadata    map[string]any
	ReversesID  *string
	ID          string
	Description string
	Kind        EntryKind
	Postings    []Posting
	Sequence    int64
}

// Totals returns the sums of the debit and credit postings.
func (e *JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, p := range e.Postings {
		if p.Side == Debit {
			debits = debits.Add(p.Amount)
		} else {
			credits = credits.Add(p.Amount)
		}
	}
	return debits, credits
}

// Validate checks the posting invariants: at least one posting, valid sides,
// positive amounts and sum(debits) == sum(credits).
func (e *JournalEntry) Validate() error {
	if len(e.Postings) == 0 {
		return ErrEmptyEntry
	}

	for i, p := range e.Postings {
		if strings.TrimSpace(p.Account) == "" {
			return fmt.Errorf("%w: posting %d has no account", ErrInvalidPosting, i)
		}
		if p.Side != Debit && p.Side != Credit {
			return fmt.Errorf("%w: posting %d has side %q", ErrInvalidPosting, i, p.Side)
		}
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: posting %d amount %s", ErrInvalidAmount, i, p.Amount)
		}
	}

	debits, credits := e.Totals()
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits=%s credits=%s", ErrUnbalancedEntry, debits, credits)
	}

	return nil
}

// AccountNames returns the distinct account names referenced by the entry,
// in first-seen order.
func (e *JournalEntry) AccountNames() []string {
	seen := make(map[string]bool, len(e.Postings))
	names := make([]string, 0, len(e.Postings))
	for _, p := range e.Postings {
		if !seen[p.Account] {
			seen[p.Account] = true
			names = append(names, p.Account)
		}
	}
	return names
}

// Touches reports whether any posting references the account.
func (e *JournalEntry) Touches(account string) bool {
	for _, p := range e.Postings {
		if p.Account == account {
			return true
		}
	}
	return false
}

// Reversal builds the postings that cancel this entry.
func (e *JournalEntry) Reversal() []Posting {
	postings := make([]Posting, len(e.Postings))
	for i, p := range e.Postings {
		postings[i] = Posting{Account: p.Account, Side: p.Side.Opposite(), Amount: p.Amount}
	}
	return postings
}

// Before orders entries by date, then by insertion sequence.
func (e *JournalEntry) Before(other *JournalEntry) bool {
	if !e.Date.Equal(other.Date) {
		return e.Date.Before(other.Date)
	}
	return e.Sequence < other.Sequence
}

// EntryFilter selects entries from the journal. Zero values mean unbounded.
type EntryFilter struct {
	From         *time.Time
	To           *time.Time
	Account      string
	ExcludeKinds []EntryKind
}

// Match reports whether the entry passes the filter.
func (f EntryFilter) Match(e *JournalEntry) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	for _, k := range f.ExcludeKinds {
		if e.Kind == k {
			return false
		}
	}
	if f.Account != "" && !e.Touches(f.Account) {
		return false
	}
	return true
}
