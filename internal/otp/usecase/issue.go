package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
)

// IssueOutput describes a delivered code.
type IssueOutput struct {
	Destination string
	ExpiresAt   time.Time
}

func (s *Usecase) validatePhone(in any) error {
	if err := s.validator.Validate(in); err != nil {
		return goerror.WrapInvalidInput(errors.Join(entity.ErrPhoneRequired, err), "Phone number required")
	}
	return nil
}

// issue generates, stores and delivers a fresh code for phone. With
// enforceCooldown set, a send less than ResendInterval ago rejects the call,
// whether or not its code is still stored.
func (s *Usecase) issue(ctx context.Context, phone string, enforceCooldown bool) (*IssueOutput, error) {
	unlock := s.repoStore.Lock(phone)

	now := s.clock.Now()
	lastSend, sent := s.repoStore.LastSend(phone)

	if enforceCooldown && sent {
		if remaining := lastSend.Cooldown(now, s.policy.ResendInterval); remaining > 0 {
			unlock()

			terr := entity.NewThrottledError(remaining)
			s.count(ctx, s.throttledCounter)
			slog.WarnContext(ctx, "otp resend inside cooldown", "phone", phone, "retry_after_seconds", terr.RetryAfterSeconds)

			return nil, goerror.NewThrottled(
				terr,
				fmt.Sprintf("Please wait %d seconds before requesting a new OTP", terr.RetryAfterSeconds),
				terr.RetryAfterSeconds,
			)
		}
	}

	code := s.generator.Generate()
	digest, err := s.hmac.Hash(strconv.Itoa(code))
	if err != nil {
		unlock()
		slog.ErrorContext(ctx, "failed to hash otp code", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}

	cred := entity.Credential{
		Phone:      phone,
		CodeDigest: string(digest),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.policy.ExpiryWindow),
	}
	if prior, ok := s.repoStore.Get(phone); ok {
		cred.Fallback = prior.Superseded()
	}
	s.repoStore.Put(cred)
	s.repoStore.PutLastSend(phone, entity.SendMark{At: now, LastDeliveredAt: lastSend.LastDeliveredAt})
	unlock()

	destination, err := s.repoNotifier.Deliver(ctx, phone, code)
	if err != nil {
		s.rollback(cred)
		s.count(ctx, s.deliveryFailedCounter)
		slog.ErrorContext(ctx, "failed to deliver otp", "phone", phone, "error", err)

		return nil, goerror.WrapBusiness(fmt.Errorf("%w: %w", entity.ErrDelivery, err), "Failed to send OTP", goerror.CodeBadGateway)
	}
	s.confirm(cred)

	s.count(ctx, s.issuedCounter, attribute.Bool("resend", enforceCooldown))

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		Phone:       phone,
		Destination: destination,
		IssuedAt:    cred.IssuedAt,
		ExpiresAt:   cred.ExpiresAt,
		Resend:      enforceCooldown,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "phone", phone, "error", err)
	}

	return &IssueOutput{Destination: destination, ExpiresAt: cred.ExpiresAt}, nil
}

// confirm marks written as delivered. When a newer call has replaced it,
// written becomes that call's fallback instead.
func (s *Usecase) confirm(written entity.Credential) {
	unlock := s.repoStore.Lock(written.Phone)
	defer unlock()

	written.Delivered = true
	written.Fallback = nil

	if current, ok := s.repoStore.Get(written.Phone); ok {
		switch {
		case current.SameIssue(written):
			current.Delivered = true
			current.Fallback = nil
			s.repoStore.Put(current)
		case !current.Delivered && current.IssuedAt.After(written.IssuedAt) &&
			(current.Fallback == nil || current.Fallback.IssuedAt.Before(written.IssuedAt)):
			current.Fallback = &written
			s.repoStore.Put(current)
		}
	}

	mark, ok := s.repoStore.LastSend(written.Phone)
	switch {
	case !ok || !mark.At.After(written.IssuedAt):
		s.repoStore.PutLastSend(written.Phone, entity.SendMark{
			At:              written.IssuedAt,
			Delivered:       true,
			LastDeliveredAt: written.IssuedAt,
		})
	case mark.LastDeliveredAt.Before(written.IssuedAt):
		mark.LastDeliveredAt = written.IssuedAt
		s.repoStore.PutLastSend(written.Phone, mark)
	}
}

// rollback undoes written after a failed delivery, restoring the newest
// delivered credential and send mark. A newer call's state is left alone.
func (s *Usecase) rollback(written entity.Credential) {
	unlock := s.repoStore.Lock(written.Phone)
	defer unlock()

	if current, ok := s.repoStore.Get(written.Phone); ok && current.SameIssue(written) {
		if current.Fallback != nil {
			s.repoStore.Put(*current.Fallback)
		} else {
			s.repoStore.Delete(written.Phone)
		}
	}

	if mark, ok := s.repoStore.LastSend(written.Phone); ok && mark.At.Equal(written.IssuedAt) {
		if prev, ok := mark.Revert(); ok {
			s.repoStore.PutLastSend(written.Phone, prev)
		} else {
			s.repoStore.DeleteLastSend(written.Phone)
		}
	}
}

func normalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}
