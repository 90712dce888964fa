package eventpublisher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/tripledger/internal/domain"
)

// LogPublisher writes events to the log. Used when EVENTS_CHANNEL is empty.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.Event) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("trip_id", event.TripID).
		Interface("payload", event.Payload).
		Time("occurred_at", event.OccurredAt).
		Msg("event published")

	return nil
}
