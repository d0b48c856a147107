package audit

import (
	"context"
	"log/slog"
)

// Worker drains the publisher's inbox into a sink. Sink failures are logged
// and skipped; audit delivery is best effort and must never wedge the
// pipeline behind one bad event.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit emit failed",
					"type", string(event.Type),
					"error", err,
				)
			}
		}
	}
}
