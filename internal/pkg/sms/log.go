package sms

import (
	"context"
	"log/slog"
	"strings"
)

// Log is a Sender that only writes to slog.
type Log struct{}

// NewLog returns the development Sender.
func NewLog() *Log {
	return &Log{}
}

// Send logs the message and always succeeds for a non-empty destination.
func (*Log) Send(ctx context.Context, destination, message string) error {
	if strings.TrimSpace(destination) == "" {
		return ErrDestinationRequired
	}

	slog.InfoContext(ctx, "sms log driver", "destination", destination, "sms_body", message)
	return nil
}
