package domain

import "time"

const (
	EventTypeAccountRegistered  = "account.registered"
	EventTypeAccountDeactivated = "account.deactivated"
	EventTypeEntryRecorded      = "entry.recorded"
	EventTypeEntryReversed      = "entry.reversed"
	EventTypePeriodOpened       = "period.opened"
	EventTypePeriodClosed       = "period.closed"
)

const (
	AggregateTypeAccount = "account"
	AggregateTypeEntry   = "entry"
	AggregateTypePeriod  = "period"
)

// OutboxEvent is a change notification written in the same transaction as
// the change itself and delivered later by the publisher.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountRegisteredEvent describes a newly registered account.
func AccountRegisteredEvent(id string, a *Account) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountRegistered,
		Payload: map[string]any{
			"name":              a.Name,
			"classification":    string(a.Classification),
			"contra":            a.Contra,
			"contra_of":         a.ContraOf,
			"retained_earnings": a.RetainedEarnings,
		},
		CreatedAt: a.UpdatedAt,
	}
}

// AccountDeactivatedEvent describes an account that stopped accepting
// postings at the given time.
func AccountDeactivatedEvent(id string, a *Account, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountDeactivated,
		Payload:       map[string]any{"name": a.Name},
		CreatedAt:     at,
	}
}

// EntryEvent describes an appended entry. eventType is EventTypeEntryRecorded
// or EventTypeEntryReversed.
func EntryEvent(id, eventType string, e *JournalEntry) *OutboxEvent {
	payload := map[string]any{
		"kind":     string(e.Kind),
		"date":     e.Date.Format(time.RFC3339),
		"sequence": e.Sequence,
		"postings": len(e.Postings),
	}
	if e.ReversesID != nil {
		payload["reverses_id"] = *e.ReversesID
	}
	return &OutboxEvent{
		ID:            id,
		AggregateID:   e.ID,
		AggregateType: AggregateTypeEntry,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     e.CreatedAt,
	}
}

// PeriodOpenedEvent describes a newly opened period.
func PeriodOpenedEvent(id string, p *Period) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   p.ID,
		AggregateType: AggregateTypePeriod,
		EventType:     EventTypePeriodOpened,
		Payload: map[string]any{
			"name":  p.Name,
			"start": p.Start.Format(time.RFC3339),
			"end":   p.End.Format(time.RFC3339),
		},
		CreatedAt: p.CreatedAt,
	}
}

// PeriodClosedEvent describes a closed period. closing is nil when there
// was nothing to transfer.
func PeriodClosedEvent(id string, p *Period, closing *JournalEntry) *OutboxEvent {
	payload := map[string]any{
		"name": p.Name,
		"end":  p.End.Format(time.RFC3339),
	}
	if closing != nil {
		payload["closing_entry_id"] = closing.ID
		payload["postings"] = len(closing.Postings)
	}
	at := p.UpdatedAt
	if p.ClosedAt != nil {
		at = *p.ClosedAt
	}
	return &OutboxEvent{
		ID:            id,
		AggregateID:   p.ID,
		AggregateType: AggregateTypePeriod,
		EventType:     EventTypePeriodClosed,
		Payload:       payload,
		CreatedAt:     at,
	}
}
