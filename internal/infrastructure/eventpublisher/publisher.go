// Package eventpublisher relays outbox events to an external sink.
package eventpublisher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
)

// Publisher delivers one event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Observer is told about each publish attempt.
type Observer interface {
	EventPublished(eventType string)
	EventFailed()
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Observer   Observer
	Logger     zerolog.Logger
	BatchSize  int
	Interval   time.Duration
	// Retention is how long delivered events stay in the outbox. Zero keeps
	// them forever.
	Retention time.Duration
}

// EventPublisher polls the outbox and delivers events in the order they
// were written. Delivery stops at the first failure and resumes from that
// event on the next poll, so consumers never see a later entry before an
// earlier one.
type EventPublisher struct {
	outbox    usecase.OutboxRepository
	publisher Publisher
	observer  Observer
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &EventPublisher{
		outbox:    cfg.OutboxRepo,
		publisher: cfg.Publisher,
		observer:  cfg.Observer,
		logger:    cfg.Logger.With().Str("component", "event_publisher").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		now:       time.Now,
	}
}

// Start polls until ctx is cancelled and then returns ctx.Err().
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Dur("retention", ep.retention).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		ep.tick(ctx)

		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (ep *EventPublisher) tick(ctx context.Context) {
	n, err := ep.Drain(ctx)
	if err != nil && ctx.Err() == nil {
		ep.logger.Warn().Err(err).Int("delivered", n).Msg("outbox delivery interrupted")
	} else if n > 0 {
		ep.logger.Debug().Int("delivered", n).Msg("outbox drained")
	}

	if ep.retention > 0 {
		if err := ep.outbox.DeletePublished(ctx, ep.now().Add(-ep.retention)); err != nil {
			ep.logger.Error().Err(err).Msg("failed to prune delivered events")
		}
	}
}

// Drain delivers pending events batch by batch until the outbox is empty
// or a delivery fails. It returns the number of events delivered.
func (ep *EventPublisher) Drain(ctx context.Context) (int, error) {
	delivered := 0
	for ctx.Err() == nil {
		events, err := ep.outbox.GetUnpublished(ctx, ep.batchSize)
		if err != nil {
			return delivered, fmt.Errorf("read outbox: %w", err)
		}

		for _, event := range events {
			if err := ep.deliver(ctx, event); err != nil {
				return delivered, err
			}
			delivered++
		}

		if len(events) < ep.batchSize {
			return delivered, nil
		}
	}
	return delivered, ctx.Err()
}

func (ep *EventPublisher) deliver(ctx context.Context, event *domain.OutboxEvent) error {
	if err := ep.publisher.Publish(ctx, event); err != nil {
		if ep.observer != nil {
			ep.observer.EventFailed()
		}
		return fmt.Errorf("publish %s %s: %w", event.EventType, event.ID, err)
	}
	if ep.observer != nil {
		ep.observer.EventPublished(event.EventType)
	}

	if err := ep.outbox.MarkPublished(ctx, event.ID, ep.now()); err != nil {
		// The sink already has the event; it will be sent again next poll.
		return fmt.Errorf("mark %s published: %w", event.ID, err)
	}
	return nil
}
