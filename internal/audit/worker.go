package audit

import (
	"context"
	"log/slog"
)

// Sink is where the worker delivers events.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Worker drains queued events into a sink off the request path.
type Worker struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
}

// NewWorker creates a worker with a bounded queue.
func NewWorker(sink Sink, buffer int, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: make(chan Event, buffer), logger: logger}
}

// Emit enqueues the event. When the queue is full the event is handed to
// the sink synchronously rather than dropped.
func (w *Worker) Emit(ctx context.Context, event Event) error {
	select {
	case w.inbox <- event:
		return nil
	default:
		return w.sink.Emit(ctx, event)
	}
}

// Run delivers events until ctx is cancelled, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.sink.Emit(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to deliver audit event",
			"action", string(event.Action),
			"institution_id", event.InstitutionID.String(),
			"error", err,
		)
	}
}
