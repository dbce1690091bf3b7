package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher accepts audit events. Implementations must not block the caller
// for long; failures are reported but never abort the domain operation.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// LogPublisher writes events as structured log lines. It is the default
// sink when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	event = event.Normalize(time.Now())
	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"category", string(event.Category),
		"subject", event.Subject,
		"field", event.Field,
		"reason", event.Reason,
		"request_id", event.RequestID,
	)
	return nil
}

// MemoryPublisher keeps events in memory for tests and local runs.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.Normalize(time.Now()))
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Event{}, p.events...)
}

// ByAction filters emitted events by action.
func (p *MemoryPublisher) ByAction(action Action) []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Event
	for _, e := range p.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
