package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrBufferFull is returned by AsyncPublisher.Emit when the inbox is full.
var ErrBufferFull = errors.New("audit buffer full")

// AsyncPublisher queues events and forwards them to a downstream publisher
// from Run, so request paths never wait on the sink.
type AsyncPublisher struct {
	next   Publisher
	inbox  chan Event
	logger *slog.Logger
}

// NewAsyncPublisher buffers up to size events in front of next.
func NewAsyncPublisher(next Publisher, size int, logger *slog.Logger) *AsyncPublisher {
	if size <= 0 {
		size = 1
	}
	return &AsyncPublisher{next: next, inbox: make(chan Event, size), logger: logger}
}

// Emit enqueues event without blocking.
func (p *AsyncPublisher) Emit(_ context.Context, event Event) error {
	select {
	case p.inbox <- event.Normalize(time.Now()):
		return nil
	default:
		return ErrBufferFull
	}
}

// Run forwards queued events until ctx is done, then drains what is left
// with a fresh context bounded by drainTimeout. Sink errors are logged and
// do not stop the loop.
func (p *AsyncPublisher) Run(ctx context.Context, drainTimeout time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			defer cancel()
			p.drain(drainCtx)
			return nil
		case event := <-p.inbox:
			p.forward(ctx, event)
		}
	}
}

func (p *AsyncPublisher) drain(ctx context.Context) {
	for {
		select {
		case event := <-p.inbox:
			p.forward(ctx, event)
		default:
			return
		}
	}
}

func (p *AsyncPublisher) forward(ctx context.Context, event Event) {
	if err := p.next.Emit(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", string(event.Action),
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
