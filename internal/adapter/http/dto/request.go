package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// Date is a calendar date or an RFC 3339 timestamp. Plain dates are read
// as midnight UTC and written back without a clock.
type Date struct {
	time.Time
}

// ParseDate parses "2006-01-02" or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatDate(d.Time))
}

// FormatDate writes midnight UTC as a plain date and anything else as
// RFC 3339.
func FormatDate(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// RegisterAccountRequest represents a request to register an account.
type RegisterAccountRequest struct {
	Name             string `json:"name"`
	Classification   string `json:"classification,omitempty"`
	ContraOf         string `json:"contra_of,omitempty"`
	RetainedEarnings bool   `json:"retained_earnings,omitempty"`
}

// ToUseCaseInput converts to use case input. A contra account may omit its
// classification to inherit the one of its parent.
func (r *RegisterAccountRequest) ToUseCaseInput() (usecase.RegisterAccountInput, error) {
	input := usecase.RegisterAccountInput{
		Name:             r.Name,
		ContraOf:         r.ContraOf,
		RetainedEarnings: r.RetainedEarnings,
	}
	if r.Classification != "" || r.ContraOf == "" {
		c, err := domain.ParseClassification(r.Classification)
		if err != nil {
			return input, err
		}
		input.Classification = c
	}
	return input, nil
}

// PostingRequest is one line of an entry.
type PostingRequest struct {
	Account string          `json:"account"`
	Side    string          `json:"side"`
	Amount  decimal.Decimal `json:"amount"`
}

// RecordEntryRequest represents a request to record a journal entry.
type RecordEntryRequest struct {
	Date        Date             `json:"date"`
	Description string           `json:"description,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	Postings    []PostingRequest `json:"postings"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordEntryRequest) ToUseCaseInput() (usecase.RecordEntryInput, error) {
	postings := make([]domain.Posting, len(r.Postings))
	for i, p := range r.Postings {
		side, err := domain.ParseSide(p.Side)
		if err != nil {
			return usecase.RecordEntryInput{}, fmt.Errorf("posting %d: %w", i, err)
		}
		postings[i] = domain.Posting{Account: p.Account, Side: side, Amount: p.Amount}
	}

	return usecase.RecordEntryInput{
		Date:        r.Date.Time,
		Description: r.Description,
		Metadata:    r.Metadata,
		Postings:    postings,
	}, nil
}

// OpeningBalanceRequest is the starting balance of one account.
type OpeningBalanceRequest struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// OpeningBalancesRequest represents a request to record opening balances.
type OpeningBalancesRequest struct {
	Date        Date                    `json:"date"`
	Description string                  `json:"description,omitempty"`
	Balances    []OpeningBalanceRequest `json:"balances"`
}

// ToUseCaseInput converts to use case input.
func (r *OpeningBalancesRequest) ToUseCaseInput() usecase.RecordOpeningBalancesInput {
	balances := make([]usecase.OpeningBalance, len(r.Balances))
	for i, b := range r.Balances {
		balances[i] = usecase.OpeningBalance{Account: b.Account, Amount: b.Amount}
	}
	return usecase.RecordOpeningBalancesInput{
		Date:        r.Date.Time,
		Description: r.Description,
		Balances:    balances,
	}
}

// ReverseEntryRequest represents a request to reverse an entry.
type ReverseEntryRequest struct {
	Date        *Date  `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReverseEntryRequest) ToUseCaseInput(entryID string) usecase.ReverseEntryInput {
	input := usecase.ReverseEntryInput{EntryID: entryID, Description: r.Description}
	if r.Date != nil && !r.Date.IsZero() {
		d := r.Date.Time
		input.Date = &d
	}
	return input
}

// OpenPeriodRequest represents a request to open an accounting period.
type OpenPeriodRequest struct {
	Name  string `json:"name,omitempty"`
	Start Date   `json:"start"`
	End   Date   `json:"end"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenPeriodRequest) ToUseCaseInput() usecase.OpenPeriodInput {
	return usecase.OpenPeriodInput{Name: r.Name, Start: r.Start.Time, End: r.End.Time}
}

// ClosePeriodRequest represents a request to close a period.
type ClosePeriodRequest struct {
	RetainedEarnings string `json:"retained_earnings,omitempty"`
}

// ImportRequest represents a batch import.
type ImportRequest struct {
	Accounts        []RegisterAccountRequest `json:"accounts,omitempty"`
	OpeningBalances *OpeningBalancesRequest  `json:"opening_balances,omitempty"`
	Entries         []RecordEntryRequest     `json:"entries,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ImportRequest) ToUseCaseInput() (usecase.ImportInput, error) {
	var input usecase.ImportInput

	for i := range r.Accounts {
		acc, err := r.Accounts[i].ToUseCaseInput()
		if err != nil {
			return input, fmt.Errorf("account %d: %w", i, err)
		}
		input.Accounts = append(input.Accounts, acc)
	}

	if r.OpeningBalances != nil {
		opening := r.OpeningBalances.ToUseCaseInput()
		input.OpeningBalances = &opening
	}

	for i := range r.Entries {
		entry, err := r.Entries[i].ToUseCaseInput()
		if err != nil {
			return input, fmt.Errorf("entry %d: %w", i, err)
		}
		input.Entries = append(input.Entries, entry)
	}

	return input, nil
}
