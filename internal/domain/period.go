package domain

import (
	"fmt"
	"time"
)

type PeriodStatus string

const (
	PeriodStatusOpen    PeriodStatus = "open"
	PeriodStatusClosing PeriodStatus = "closing"
	PeriodStatusClosed  PeriodStatus = "closed"
)

// Period is a bounded range of calendar days over which balances and closing
// are computed. Start and End are the first and last day, both inclusive.
type Period struct {
	ClosedAt       *time.Time
	ClosingEntryID *string
	Start          time.Time
	End            time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	Name           string
	Status         PeriodStatus
}

// Validate checks the range of the period.
func (p *Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidPeriod,
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return nil
}

// Until is the first instant after the last day of the period.
func (p *Period) Until() time.Time {
	return Day(p.End).AddDate(0, 0, 1)
}

// Contains reports whether t falls on one of the days of the period.
func (p *Period) Contains(t time.Time) bool {
	return !t.Before(Day(p.Start)) && t.Before(p.Until())
}

// Overlaps reports whether the two periods share at least one day.
func (p *Period) Overlaps(other *Period) bool {
	return Day(p.Start).Before(other.Until()) && Day(other.Start).Before(p.Until())
}

// Day returns midnight UTC of the calendar day t is written in. Entries and
// periods are dated to the day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AcceptsEntries reports whether new entries may be dated within the period.
func (p *Period) AcceptsEntries() bool {
	return p.Status == PeriodStatusOpen
}

func (p *Period) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}

// BeginClosing moves an open period to closing.
func (p *Period) BeginClosing(at time.Time) error {
	if p.Status != PeriodStatusOpen {
		return fmt.Errorf("%w: period %s is %s", ErrAlreadyClosed, p.ID, p.Status)
	}
	p.Status = PeriodStatusClosing
	p.UpdatedAt = at
	return nil
}

// MarkClosed completes closing. entryID is nil when nothing had to be closed.
func (p *Period) MarkClosed(entryID *string, at time.Time) error {
	if p.Status != PeriodStatusClosing {
		return fmt.Errorf("%w: period %s is %s", ErrAlreadyClosed, p.ID, p.Status)
	}
	p.Status = PeriodStatusClosed
	p.ClosingEntryID = entryID
	p.ClosedAt = &at
	p.UpdatedAt = at
	return nil
}
