package otp

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/inbound"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/mq"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/notifier"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	otpgen "github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	SMS        sms.Sender                 `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Generator  otpgen.Generator           `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// Idempotency is optional; without it send and resend skip duplicate detection.
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoStore := store.NewMemory()
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument, dep.UID)
	repoNotifier := notifier.NewSMS(
		dep.SMS,
		dep.Instrument,
		dep.Config.GetString("modules.otp.country_prefix"),
		dep.Config.GetString("modules.otp.message_template"),
	)

	uc := usecase.New(usecase.Dependency{
		RepoStore:     repoStore,
		RepoNotifier:  repoNotifier,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		HMAC:          dep.HMAC,
		Generator:     dep.Generator,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Policy:        policyFromConfig(dep.Config),
	})

	sweepEvery := dep.Config.GetSecond("modules.otp.sweep_interval_seconds")
	dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
		return uc.RunSweeper(ctx, sweepEvery)
	})

	idemTTL := dep.Config.GetSecond("modules.otp.idempotency_ttl_seconds")
	if idemTTL <= 0 {
		idemTTL = 10 * time.Minute
	}
	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Idempotency, idemTTL)

	return nil
}

// policyFromConfig applies the defaults for absent keys. An explicit
// max_verify_attempts of 0 turns the attempt limit off.
func policyFromConfig(cfg config.Config) usecase.Policy {
	p := usecase.DefaultPolicy()

	if d := cfg.GetSecond("modules.otp.expiry_seconds"); d > 0 {
		p.ExpiryWindow = d
	}
	if cfg.IsSet("modules.otp.resend_interval_seconds") {
		p.ResendInterval = max(cfg.GetSecond("modules.otp.resend_interval_seconds"), 0)
	}
	if cfg.IsSet("modules.otp.max_verify_attempts") {
		p.MaxVerifyAttempts = max(cfg.GetInt("modules.otp.max_verify_attempts"), 0)
	}

	return p
}
