package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/domain"
)

// LogPublisher writes every event to the log. It is the sink when no
// redis is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("sink", "log").Logger()}
}

// Publish logs the event with its payload as raw JSON.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate", event.AggregateType+"/"+event.AggregateID).
		Time("created_at", event.CreatedAt).
		RawJSON("payload", payload).
		Msg("ledger event")
	return nil
}
