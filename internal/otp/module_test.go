package otp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	otpgen "github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type staticCID struct{}

func (staticCID) Generate() string { return "cid" }

func mustConfig(t *testing.T, yaml string) config.Config {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestPolicyFromConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want usecase.Policy
	}{
		{
			name: "defaults",
			yaml: "modules: {otp: {enabled: true}}",
			want: usecase.DefaultPolicy(),
		},
		{
			name: "overrides",
			yaml: "modules: {otp: {expiry_seconds: 120, resend_interval_seconds: 30, max_verify_attempts: 3}}",
			want: usecase.Policy{ExpiryWindow: 2 * time.Minute, ResendInterval: 30 * time.Second, MaxVerifyAttempts: 3},
		},
		{
			name: "limits disabled",
			yaml: "modules: {otp: {resend_interval_seconds: 0, max_verify_attempts: 0}}",
			want: usecase.Policy{ExpiryWindow: 5 * time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policyFromConfig(mustConfig(t, tt.yaml)); got != tt.want {
				t.Errorf("policy = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	// Arrange
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatal(err)
	}
	sf, err := uid.NewSnowflakeNode(1)
	if err != nil {
		t.Fatal(err)
	}
	cfg := mustConfig(t, "modules: {otp: {enabled: true, sweep_interval_seconds: 1}}")
	rt := router.NewRouter(router.Config{Config: cfg, UUID: staticCID{}, Instrument: instrument.NewNoop(), ServiceName: "otpgate"})
	gm := goroutine.NewManager(4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Act
	err = New(Dependency{
		Ctx:        ctx,
		Goroutine:  gm,
		Router:     rt,
		Messaging:  messaging.NewNoop(),
		SMS:        sms.NewLog(),
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		UID:        sf,
		HMAC:       hash.NewHMACSHA256("secret"),
		Clock:      clock.New(),
		Generator:  otpgen.NewNumeric(),
		Validator:  v,
	})

	// Assert
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/otp/send", strings.NewReader(`{"phone":"9000000001"}`))
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "OTP sent to +919000000001") {
		t.Errorf("send = %d %s", rec.Code, rec.Body.String())
	}

	cancel()
	if err := gm.Wait(); err != nil {
		t.Errorf("sweeper exit error = %v", err)
	}
}

func TestNew_ValidatesDependency(t *testing.T) {
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatal(err)
	}

	if err := New(Dependency{Validator: v}); err == nil {
		t.Error("New() with missing dependencies returned nil error")
	}
}
