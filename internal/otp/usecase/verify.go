package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
)

type VerifyInput struct {
	Phone string `validate:"required"`
	Code  string `validate:"required,digits"`
}

// Verify checks code against the phone's active credential and consumes it on
// a match.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) error {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Phone = normalizePhone(in.Phone)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		if in.Phone == "" || in.Code == "" {
			return goerror.WrapInvalidInput(errors.Join(entity.ErrPhoneCodeRequired, err), "Phone and OTP are required")
		}
		return goerror.WrapInvalidInput(errors.Join(entity.ErrCodeMalformed, err), "OTP must be numeric")
	}

	code, err := strconv.Atoi(in.Code)
	if err != nil {
		return goerror.WrapInvalidInput(entity.ErrCodeMalformed, "OTP must be numeric", "code", "code is out of range")
	}

	verifiedAt, err := s.consume(ctx, in.Phone, code)
	if err != nil {
		s.count(ctx, s.verifyFailedCounter, attribute.String("reason", failureReason(err)))
		return err
	}

	s.count(ctx, s.verifiedCounter)

	if err := s.repoMessaging.PublishOTPVerified(ctx, OTPVerifiedEvent{
		Phone:      in.Phone,
		VerifiedAt: verifiedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp verified", "phone", in.Phone, "error", err)
	}

	return nil
}

func (s *Usecase) consume(ctx context.Context, phone string, code int) (verifiedAt time.Time, err error) {
	unlock := s.repoStore.Lock(phone)
	defer unlock()

	now := s.clock.Now()
	cred, found := s.repoStore.Get(phone)

	switch entity.StateOf(cred, found, now) {
	case entity.StateNoActiveCode:
		slog.WarnContext(ctx, "otp verify without active code", "phone", phone)
		return now, goerror.WrapBusiness(entity.ErrNotRequested, "OTP not requested or expired", goerror.CodeInvalidFormat)

	case entity.StateCodeExpired:
		s.repoStore.Delete(phone)
		slog.WarnContext(ctx, "otp verify after expiry", "phone", phone, "expires_at", cred.ExpiresAt)
		return now, goerror.WrapBusiness(entity.ErrExpired, "OTP expired", goerror.CodeInvalidFormat)
	}

	if !s.hmac.Verify(cred.CodeDigest, strconv.Itoa(code)) {
		cred.FailedAttempts++
		if s.policy.MaxVerifyAttempts > 0 && cred.FailedAttempts >= s.policy.MaxVerifyAttempts {
			s.repoStore.Delete(phone)
			slog.WarnContext(ctx, "otp invalidated after failed attempts", "phone", phone, "failed_attempts", cred.FailedAttempts)
			return now, goerror.WrapBusiness(entity.ErrAttemptsExceeded, "Too many invalid attempts", goerror.CodeTooManyRequest)
		}

		s.repoStore.Put(cred)
		slog.WarnContext(ctx, "otp mismatch", "phone", phone, "failed_attempts", cred.FailedAttempts)
		return now, goerror.WrapBusiness(entity.ErrInvalidCode, "Invalid OTP", goerror.CodeInvalidFormat)
	}

	s.repoStore.Delete(phone)
	return now, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, entity.ErrNotRequested):
		return "not_requested"
	case errors.Is(err, entity.ErrExpired):
		return "expired"
	case errors.Is(err, entity.ErrAttemptsExceeded):
		return "attempts_exceeded"
	default:
		return "invalid_code"
	}
}
