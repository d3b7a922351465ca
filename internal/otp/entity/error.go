package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPhoneRequired     = errors.New("phone number required")
	ErrPhoneCodeRequired = errors.New("phone and otp are required")
	ErrCodeMalformed     = errors.New("otp must be numeric")

	ErrThrottled        = errors.New("otp resend cooldown active")
	ErrNotRequested     = errors.New("otp not requested or expired")
	ErrExpired          = errors.New("otp expired")
	ErrInvalidCode      = errors.New("invalid otp")
	ErrAttemptsExceeded = errors.New("too many invalid otp attempts")
	ErrDelivery         = errors.New("otp delivery failed")
)

// ThrottledError is returned by Resend inside the cooldown window.
type ThrottledError struct {
	RetryAfterSeconds int
}

// NewThrottledError converts the remaining wait into whole seconds, rounding up.
func NewThrottledError(remaining time.Duration) *ThrottledError {
	secs := int(remaining / time.Second)
	if remaining%time.Second > 0 {
		secs++
	}
	return &ThrottledError{RetryAfterSeconds: max(secs, 1)}
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s: retry after %ds", ErrThrottled, e.RetryAfterSeconds)
}

// Is lets errors.Is match ErrThrottled.
func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}
