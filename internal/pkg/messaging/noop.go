package messaging

import (
	"context"
	"log/slog"
	"time"
)

// Noop records published messages in the log only.
type Noop struct{}

// NewNoop returns a publisher that never talks to a broker.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish logs the destination and payload size.
func (*Noop) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := validatePublish(ctx, destination); err != nil {
		return PublishResult{}, err
	}

	slog.DebugContext(ctx, "messaging noop publish", "topic", destination, "bytes", len(msg.Body))

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close implements io.Closer.
func (*Noop) Close() error {
	return nil
}
