package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrMetadataTooLarge   = errors.New("metadata size exceeds limit")
)

const (
	MaxAccountNameLength = 255
	MaxMetadataSize      = 10 << 10
	MaxPostingsPerEntry  = 1000

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxPostingAmount bounds a single posting so that period sums stay well
// inside NUMERIC(38,18).
var MaxPostingAmount = decimal.New(1, 15)

// ValidateAccountName checks that name is usable as a ledger key: non-empty,
// printable, trimmed and at most MaxAccountNameLength runes. The colon is
// allowed so that hierarchies like "assets:bank:checking" work.
func ValidateAccountName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidAccountName)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: name has leading or trailing spaces", ErrInvalidAccountName)
	}
	if n := utf8.RuneCountInString(name); n > MaxAccountNameLength {
		return fmt.Errorf("%w: name has %d characters, limit is %d", ErrInvalidAccountName, n, MaxAccountNameLength)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: name contains non-printable character %U", ErrInvalidAccountName, r)
		}
	}
	return nil
}

// ValidatePostingAmounts checks the upper bounds of an entry. Lower bounds
// and balancing are checked by JournalEntry.Validate.
func ValidatePostingAmounts(postings []Posting) error {
	if len(postings) > MaxPostingsPerEntry {
		return fmt.Errorf("%w: %d postings exceeds limit of %d", ErrInvalidPosting, len(postings), MaxPostingsPerEntry)
	}
	for i, p := range postings {
		if p.Amount.GreaterThan(MaxPostingAmount) {
			return fmt.Errorf("%w: posting %d on %q is above %s", ErrAmountTooLarge, i, p.Account, MaxPostingAmount)
		}
	}
	return nil
}

// ValidateMetadata measures metadata by its JSON encoding, which is how it
// is stored.
func ValidateMetadata(metadata map[string]any) error {
	if len(metadata) == 0 {
		return nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("%w: metadata is not JSON encodable: %v", ErrMetadataTooLarge, err)
	}
	if len(raw) > MaxMetadataSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, len(raw), MaxMetadataSize)
	}
	return nil
}

// NormalizePage clamps list parameters to DefaultPageSize, MaxPageSize and
// a non-negative offset.
func NormalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return limit, max(offset, 0)
}
