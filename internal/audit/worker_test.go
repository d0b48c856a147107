package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherAndWorker_DrainToSink(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(16, logger, WithClock(func() time.Time { return now }))
	sink := NewMemorySink()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewWorker(sink, pub.Inbox(), logger).Run(ctx)
	}()

	pub.Record(ctx, Event{Type: EventTokenIssued, ClientID: "web-client"})
	pub.Record(ctx, Event{Type: EventGrantRejected, ClientID: "web-client"})

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	events := sink.Events()
	assert.Equal(t, EventTokenIssued, events[0].Type)
	assert.Equal(t, now, events[0].Timestamp, "publisher stamps events with its clock")

	cancel()
	<-done
}

func TestPublisher_DropsWhenFull(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	pub := NewPublisher(1, logger)

	// No worker draining: the second record must not block.
	ctx := context.Background()
	pub.Record(ctx, Event{Type: EventTokenIssued})

	finished := make(chan struct{})
	go func() {
		pub.Record(ctx, Event{Type: EventTokenIssued})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}
}
