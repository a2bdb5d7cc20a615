package domain

import "errors"

var (
	// Account errors
	ErrDuplicateAccount       = errors.New("account already exists")
	ErrUnknownAccount         = errors.New("unknown account")
	ErrInactiveAccount        = errors.New("account is inactive")
	ErrInvalidClassification  = errors.New("invalid account classification")
	ErrNoRetainedEarnings     = errors.New("no retained earnings account designated")
	ErrRetainedEarningsExists = errors.New("retained earnings account already designated")
	ErrContraParentNotRegular = errors.New("contra account must reference a regular account")

	// Entry errors
	ErrEmptyEntry      = errors.New("entry has no postings")
	ErrInvalidPosting  = errors.New("invalid posting")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrUnbalancedEntry = errors.New("entry is unbalanced: debits do not equal credits")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrAlreadyReversed = errors.New("entry already reversed")
	ErrNotReversible   = errors.New("entry cannot be reversed")

	// Period errors
	ErrPeriodNotFound    = errors.New("period not found")
	ErrInvalidPeriod     = errors.New("invalid period range")
	ErrOverlappingPeriod = errors.New("period overlaps an existing period")
	ErrPeriodClosed      = errors.New("period is closed for new entries")
	ErrAlreadyClosed     = errors.New("period already closed")
	ErrUnbalancedPeriod  = errors.New("period is unbalanced")
	ErrPeriodNotClosed   = errors.New("period is not closed")
)
