package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

// SweepExpired removes every credential that can no longer be verified.
func (s *Usecase) SweepExpired(ctx context.Context) int {
	_, span := s.startSpan(ctx, "SweepExpired")
	defer span.End()

	return s.repoStore.Sweep(func(c entity.Credential) bool {
		return !c.Expired(s.clock.Now())
	})
}

// SweepCooldowns forgets send marks whose resend cooldown has elapsed.
func (s *Usecase) SweepCooldowns(ctx context.Context) int {
	_, span := s.startSpan(ctx, "SweepCooldowns")
	defer span.End()

	return s.repoStore.SweepSends(s.clock.Now(), s.policy.ResendInterval)
}

// RunSweeper calls SweepExpired and SweepCooldowns every interval until ctx is done.
func (s *Usecase) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.policy.ExpiryWindow
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.SweepExpired(ctx); n > 0 {
				slog.DebugContext(ctx, "expired otp credentials swept", "removed", n)
			}
			if n := s.SweepCooldowns(ctx); n > 0 {
				slog.DebugContext(ctx, "elapsed otp cooldowns swept", "removed", n)
			}
		}
	}
}
