package audit

import (
	"context"
	"log/slog"
)

// LogPublisher writes events as structured log lines. It is the sink used
// when no Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	attrs := []any{
		"action", string(event.Action),
		"institution_id", event.InstitutionID.String(),
		"actor", event.Actor.String(),
		"amount", uint64(event.Amount),
		"request_id", event.RequestID,
	}
	if event.MemberID != nil {
		attrs = append(attrs, "member_id", event.MemberID.String())
	}
	if event.SubjectID != "" {
		attrs = append(attrs, "subject_id", event.SubjectID)
	}
	p.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
