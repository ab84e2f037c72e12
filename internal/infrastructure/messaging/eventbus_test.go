package messaging

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func gradedEvent(sessionID string) shared.AnswerGradedEvent {
	return shared.AnswerGradedEvent{
		BaseEvent: shared.BaseEvent{
			Type:        shared.EventAnswerGraded,
			Timestamp:   time.Now(),
			AggregateId: sessionID,
		},
		SessionID: sessionID,
		Correct:   true,
	}
}

func TestPublishDeliversToMatchingHandlers(t *testing.T) {
	bus := newTestBus()

	var got []string
	require.NoError(t, bus.Subscribe(shared.EventAnswerGraded, func(ctx context.Context, e shared.Event) {
		got = append(got, e.AggregateID())
	}))
	require.NoError(t, bus.Subscribe(shared.EventSessionCompleted, func(ctx context.Context, e shared.Event) {
		t.Fatal("wrong handler invoked")
	}))

	require.NoError(t, bus.Publish(context.Background(), gradedEvent("s-1")))
	require.NoError(t, bus.Publish(context.Background(), gradedEvent("s-2")))

	assert.Equal(t, []string{"s-1", "s-2"}, got)
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	bus := newTestBus()

	called := false
	require.NoError(t, bus.Subscribe(shared.EventAnswerGraded, func(ctx context.Context, e shared.Event) {
		panic("bad subscriber")
	}))
	require.NoError(t, bus.Subscribe(shared.EventAnswerGraded, func(ctx context.Context, e shared.Event) {
		called = true
	}))

	require.NoError(t, bus.Publish(context.Background(), gradedEvent("s-1")))
	assert.True(t, called, "later handlers still run after a panic")
}

func TestClosedBusRejectsOperations(t *testing.T) {
	bus := newTestBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), gradedEvent("s-1")), ErrBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventAnswerGraded, func(context.Context, shared.Event) {}), ErrBusClosed)
}

func TestSubscribeNilHandler(t *testing.T) {
	bus := newTestBus()
	assert.Error(t, bus.Subscribe(shared.EventAnswerGraded, nil))
}
