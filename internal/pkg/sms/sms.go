// Package sms delivers text messages through an SMS provider.
//
// Callers depend on Sender; NewFromDriver picks the Twilio REST client or the
// log driver used for local development.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverTwilio sends through the Twilio Messages API.
	DriverTwilio = "twilio"
	// DriverLog writes the message to the application log instead of sending it.
	DriverLog = "log"
)

var (
	// ErrDestinationRequired is returned when Send is called without a phone number.
	ErrDestinationRequired = errors.New("sms: destination is required")
	// ErrUnknownDriver indicates an unsupported sms driver.
	ErrUnknownDriver = errors.New("sms: unknown driver")
)

// Sender delivers message to destination, an E.164 phone number.
type Sender interface {
	Send(ctx context.Context, destination, message string) error
}

// FactoryOptions groups config for the supported drivers.
type FactoryOptions struct {
	Twilio TwilioConfig
}

// NewFromDriver constructs a Sender by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Sender, error) {
	switch strings.TrimSpace(driver) {
	case DriverTwilio:
		return NewTwilio(opts.Twilio)
	case DriverLog:
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
