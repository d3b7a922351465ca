package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when a feature is not supported by the selected broker.
	ErrUnsupported = errors.New("messaging: unsupported operation")
	// ErrDestinationRequired is returned when Publish is called without a topic/subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
)

// Messaging is a broker client that can be closed on shutdown.
type Messaging interface {
	io.Closer
	Publisher
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage represents a broker-agnostic message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte

	// Key drives partitioning on Kafka and ordering on Pub/Sub.
	Key []byte

	// Headers are sent as native headers where the broker has them and as
	// string attributes on Pub/Sub. NSQ drops them.
	Headers []Header

	// Delay defers delivery (NSQ only).
	Delay time.Duration
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	// MessageID is the broker-assigned message ID (Pub/Sub).
	MessageID string
	// Topic is the destination the message was written to.
	Topic string
	// Timestamp is when the client handed the message to the broker.
	Timestamp time.Time
}

func validatePublish(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	return nil
}
