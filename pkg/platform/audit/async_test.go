package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAsyncPublisherForwards(t *testing.T) {
	sink := NewMemoryPublisher()
	p := NewAsyncPublisher(sink, 8, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, time.Second) }()

	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionRegistrationCreated, Subject: "app-1"}))
	require.Eventually(t, func() bool { return len(sink.Events()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, CategoryCompliance, sink.Events()[0].Category)
}

func TestAsyncPublisherBufferFull(t *testing.T) {
	p := NewAsyncPublisher(NewMemoryPublisher(), 1, discardLogger())
	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionUniquenessChecked}))
	assert.ErrorIs(t, p.Emit(context.Background(), Event{Action: ActionUniquenessChecked}), ErrBufferFull)
}

func TestAsyncPublisherDrainsOnShutdown(t *testing.T) {
	sink := NewMemoryPublisher()
	p := NewAsyncPublisher(sink, 4, discardLogger())
	for range 3 {
		require.NoError(t, p.Emit(context.Background(), Event{Action: ActionDuplicateDetected}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx, time.Second))
	assert.Len(t, sink.ByAction(ActionDuplicateDetected), 3)
}

type failingSink struct{ calls int }

func (f *failingSink) Emit(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestAsyncPublisherSurvivesSinkErrors(t *testing.T) {
	sink := &failingSink{}
	p := NewAsyncPublisher(sink, 4, discardLogger())
	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionRegistrationRejected}))
	require.NoError(t, p.Emit(context.Background(), Event{Action: ActionRegistrationRejected}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx, time.Second))
	assert.Equal(t, 2, sink.calls)
}
