package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Classification is the accounting class of an account.
type Classification string

const (
	Asset     Classification = "asset"
	Liability Classification = "liability"
	Capital   Classification = "capital"
	Income    Classification = "income"
	Expense   Classification = "expense"
)

var validClassifications = map[Classification]bool{
	Asset:     true,
	Liability: true,
	Capital:   true,
	Income:    true,
	Expense:   true,
}

// ParseClassification parses a classification name, case-insensitively.
func ParseClassification(s string) (Classification, error) {
	c := Classification(strings.ToLower(strings.TrimSpace(s)))
	if !validClassifications[c] {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassification, s)
	}
	return c, nil
}

// IsValid checks if the classification is one of the five known classes.
func (c Classification) IsValid() bool {
	return validClassifications[c]
}

// NormalSide returns the side that increases a regular account of this class.
func (c Classification) NormalSide() Side {
	switch c {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// IsTemporary reports whether accounts of this class are zeroed at period end.
func (c Classification) IsTemporary() bool {
	return c == Income || c == Expense
}

// Account is a ledger account. Classification, Contra and the derived
// normal side are fixed at creation.
type Account struct {
	ID               string
	Name             string
	Classification   Classification
	Contra           bool
	ContraOf         string
	RetainedEarnings bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalSide returns the side that increases this account's balance.
// A contra account inverts the normal side of its classification.
func (a *Account) NormalSide() Side {
	side := a.Classification.NormalSide()
	if a.Contra {
		return side.Opposite()
	}
	return side
}

// IsTemporary reports whether the account is closed into capital at period end.
func (a *Account) IsTemporary() bool {
	return a.Classification.IsTemporary()
}

// Signed returns the effect of a posting on this account's balance.
func (a *Account) Signed(side Side, amount decimal.Decimal) decimal.Decimal {
	if side == a.NormalSide() {
		return amount
	}
	return amount.Neg()
}

// Validate checks the invariants that do not depend on other accounts.
func (a *Account) Validate() error {
	if err := ValidateAccountName(a.Name); err != nil {
		return err
	}

	if !a.Classification.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidClassification, a.Classification)
	}

	if a.ContraOf != "" && !a.Contra {
		return fmt.Errorf("%w: contra_of requires a contra account", ErrInvalidClassification)
	}

	if a.RetainedEarnings && (a.Classification != Capital || a.Contra) {
		return fmt.Errorf("%w: retained earnings must be a regular capital account", ErrInvalidClassification)
	}

	return nil
}
