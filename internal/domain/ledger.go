package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is one posting in an account's T-account view.
type LedgerLine struct {
	Date        time.Time
	EntryID     string
	Description string
	Kind        EntryKind
	Side        Side
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Sequence    int64
}

// AccountLedger is the T-account of one account over a date range.
type AccountLedger struct {
	From    *time.Time
	To      *time.Time
	Account *Account
	Lines   []LedgerLine
	Opening decimal.Decimal
	Debits  decimal.Decimal
	Credits decimal.Decimal
	Closing decimal.Decimal
}

// NewAccountLedger starts an empty ledger with the given opening balance.
func NewAccountLedger(acc *Account, from, to *time.Time, opening decimal.Decimal) *AccountLedger {
	return &AccountLedger{
		From:    from,
		To:      to,
		Account: acc,
		Lines:   []LedgerLine{},
		Opening: opening,
		Debits:  decimal.Zero,
		Credits: decimal.Zero,
		Closing: opening,
	}
}

// Add appends the account's postings from entry, updating the running balance.
func (l *AccountLedger) Add(e *JournalEntry) {
	for _, p := range e.Postings {
		if p.Account != l.Account.Name {
			continue
		}
		l.Closing = l.Closing.Add(l.Account.Signed(p.Side, p.Amount))
		if p.Side == Debit {
			l.Debits = l.Debits.Add(p.Amount)
		} else {
			l.Credits = l.Credits.Add(p.Amount)
		}
		l.Lines = append(l.Lines, LedgerLine{
			Date:        e.Date,
			EntryID:     e.ID,
			Description: e.Description,
			Kind:        e.Kind,
			Side:        p.Side,
			Amount:      p.Amount,
			Balance:     l.Closing,
			Sequence:    e.Sequence,
		})
	}
}

// SignedBalance folds the account's postings in entry into balance.
func SignedBalance(acc *Account, balance decimal.Decimal, e *JournalEntry) decimal.Decimal {
	for _, p := range e.Postings {
		if p.Account == acc.Name {
			balance = balance.Add(acc.Signed(p.Side, p.Amount))
		}
	}
	return balance
}
