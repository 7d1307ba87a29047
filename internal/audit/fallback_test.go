package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bursar/pkg/platform/circuit"
)

type flakySink struct {
	err error
	got []Action
}

func (f *flakySink) Emit(_ context.Context, e Event) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, e.Action)
	return nil
}

func TestFallbackSink(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	primary := &flakySink{}
	fallback := NewMemoryPublisher()
	breaker := circuit.New("audit", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	sink := NewFallbackSink(primary, fallback, breaker, logger)

	require.NoError(t, sink.Emit(ctx, Event{Action: ActionDeposit}))
	assert.Equal(t, []Action{ActionDeposit}, primary.got)

	primary.err = errors.New("broker unreachable")
	err := sink.Emit(ctx, Event{Action: ActionRefund})
	assert.Error(t, err, "below the threshold the failure is surfaced")
	assert.Empty(t, fallback.Events())

	require.NoError(t, sink.Emit(ctx, Event{Action: ActionWithdrawal}))
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, []Action{ActionWithdrawal}, fallback.Actions())

	primary.err = nil
	require.NoError(t, sink.Emit(ctx, Event{Action: ActionFeePaid}))
	assert.False(t, breaker.IsOpen())
	assert.Equal(t, []Action{ActionDeposit, ActionFeePaid}, primary.got)
}
