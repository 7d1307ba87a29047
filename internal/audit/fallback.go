package audit

import (
	"context"
	"log/slog"

	"bursar/pkg/platform/circuit"
)

// FallbackSink delivers to primary and switches to fallback while the
// breaker is open. The primary is still attempted on every event so the
// breaker can observe recovery.
type FallbackSink struct {
	primary  Sink
	fallback Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackSink(primary, fallback Sink, breaker *circuit.Breaker, logger *slog.Logger) *FallbackSink {
	return &FallbackSink{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FallbackSink) Emit(ctx context.Context, event Event) error {
	err := s.primary.Emit(ctx, event)
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "audit sink recovered", "breaker", s.breaker.Name())
		}
		return nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "audit sink failing, switching to fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
	}
	if !useFallback {
		return err
	}
	return s.fallback.Emit(ctx, event)
}
