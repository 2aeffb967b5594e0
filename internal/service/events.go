package service

import (
	"context"
	"encoding/json"
	"log"

	"filehub/internal/domain"
)

// EventPublisher receives the domain events drained from an aggregate after
// its state has been persisted. Publishing is best-effort: a lost event must
// never fail the operation that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}

// LogEventPublisher writes each event as a JSON line, one per event.
type LogEventPublisher struct{}

// NewLogEventPublisher constructs the default JSON-line publisher.
func NewLogEventPublisher() *LogEventPublisher {
	return &LogEventPublisher{}
}

func (p *LogEventPublisher) Publish(_ context.Context, events ...domain.Event) {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			payload = []byte(`{}`)
		}
		entry, _ := json.Marshal(map[string]any{
			"level":   "info",
			"msg":     "domain event",
			"event":   e.EventName(),
			"at":      e.OccurredAt().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"payload": json.RawMessage(payload),
		})
		log.Println(string(entry))
	}
}

// NopEventPublisher discards events. Used where publishing is not wired.
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, ...domain.Event) {}
