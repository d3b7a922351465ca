package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultExpiryWindow      = 5 * time.Minute
	DefaultResendInterval    = time.Minute
	DefaultMaxVerifyAttempts = 5
)

type OTPIssuedEvent struct {
	Phone       string
	Destination string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Resend      bool
}

type OTPVerifiedEvent struct {
	Phone      string
	VerifiedAt time.Time
}

type repoStore interface {
	Lock(phone string) (unlock func())
	Get(phone string) (entity.Credential, bool)
	Put(c entity.Credential)
	Delete(phone string)
	LastSend(phone string) (entity.SendMark, bool)
	PutLastSend(phone string, mark entity.SendMark)
	DeleteLastSend(phone string)
	Sweep(keep func(entity.Credential) bool) int
	SweepSends(now time.Time, interval time.Duration) int
	Len() int
}

type repoNotifier interface {
	Deliver(ctx context.Context, phone string, code int) (destination string, err error)
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
}

// Policy holds the lifecycle timings.
type Policy struct {
	ExpiryWindow   time.Duration
	ResendInterval time.Duration
	// MaxVerifyAttempts of 0 disables the limit.
	MaxVerifyAttempts int
}

// DefaultPolicy returns 5 minute expiry, 1 minute cooldown and 5 attempts.
func DefaultPolicy() Policy {
	return Policy{
		ExpiryWindow:      DefaultExpiryWindow,
		ResendInterval:    DefaultResendInterval,
		MaxVerifyAttempts: DefaultMaxVerifyAttempts,
	}
}

type Usecase struct {
	repoStore     repoStore
	repoNotifier  repoNotifier
	repoMessaging repoMessaging
	validator     validator.Validator
	hmac          hash.Hash
	generator     otp.Generator
	clock         clock.Clocker
	ins           instrument.Instrumentation
	policy        Policy

	issuedCounter         metric.Int64Counter
	deliveryFailedCounter metric.Int64Counter
	throttledCounter      metric.Int64Counter
	verifiedCounter       metric.Int64Counter
	verifyFailedCounter   metric.Int64Counter
}

type Dependency struct {
	RepoStore     repoStore
	RepoNotifier  repoNotifier
	RepoMessaging repoMessaging
	Validator     validator.Validator
	HMAC          hash.Hash
	Generator     otp.Generator
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Policy        Policy
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoStore:     dep.RepoStore,
		repoNotifier:  dep.RepoNotifier,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		hmac:          dep.HMAC,
		generator:     dep.Generator,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		policy:        dep.Policy,
	}

	if s.policy.ExpiryWindow <= 0 {
		s.policy.ExpiryWindow = DefaultExpiryWindow
	}
	if s.policy.ResendInterval < 0 {
		s.policy.ResendInterval = DefaultResendInterval
	}
	if s.policy.MaxVerifyAttempts < 0 {
		s.policy.MaxVerifyAttempts = 0
	}

	s.initMetrics()

	return s
}

func (s *Usecase) initMetrics() {
	meter := s.ins.Meter("otp.usecase")

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Error("failed to create otp counter", "name", name, "error", err)
		}
		return c
	}

	s.issuedCounter = counter("otp.issued", "Number of OTP codes issued and delivered")
	s.deliveryFailedCounter = counter("otp.delivery_failed", "Number of OTP deliveries rejected by the gateway")
	s.throttledCounter = counter("otp.throttled", "Number of resend requests inside the cooldown window")
	s.verifiedCounter = counter("otp.verified", "Number of successful OTP verifications")
	s.verifyFailedCounter = counter("otp.verify_failed", "Number of failed OTP verifications")

	if _, err := meter.Int64ObservableGauge(
		"otp.credentials.live",
		metric.WithDescription("Number of credentials currently held in memory"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.repoStore.Len()))
			return nil
		}),
	); err != nil {
		slog.Error("failed to create otp live gauge", "error", err)
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// LiveCredentials returns the number of stored credentials, expired ones included
// until the sweeper removes them.
func (s *Usecase) LiveCredentials() int {
	return s.repoStore.Len()
}
