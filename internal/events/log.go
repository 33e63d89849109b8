package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher writes events to the application log. It is the fallback when
// no broker is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info().
		Str("event_type", e.Type).
		Str("event_id", e.ID).
		Str("key", e.Key).
		RawJSON("payload", e.Payload).
		Msg("domain event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
