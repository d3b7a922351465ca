package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Send(ctx context.Context, in usecase.SendInput) (*usecase.IssueOutput, error)
	Resend(ctx context.Context, in usecase.ResendInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) error
	LiveCredentials() int
}

// RegisterHTTPEndpoint mounts the OTP routes. A nil idem disables the
// Idempotency-Key handling on send and resend.
func RegisterHTTPEndpoint(r *router.Router, uc uc, idem idempotency.Idempotency, idemTTL time.Duration) {
	end := &HTTPEndpoint{uc: uc}
	once := router.Idempotent(idem, idemTTL)

	r.POST("/api/v1/otp/send", end.Send, once)
	r.POST("/api/v1/otp/resend", end.Resend, once)
	r.POST("/api/v1/otp/verify", end.Verify)

	r.GET("/health", end.Health)
}
