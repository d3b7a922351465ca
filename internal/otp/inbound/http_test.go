package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type fixedCode int

func (c fixedCode) Generate() int { return int(c) }

type stubNotifier struct{ err error }

func (n *stubNotifier) Deliver(_ context.Context, phone string, _ int) (string, error) {
	if n.err != nil {
		return "", n.err
	}
	return "+91" + phone, nil
}

type discardEvents struct{}

func (discardEvents) PublishOTPIssued(context.Context, usecase.OTPIssuedEvent) error     { return nil }
func (discardEvents) PublishOTPVerified(context.Context, usecase.OTPVerifiedEvent) error { return nil }

type staticID struct{}

func (staticID) Generate() string { return "cid" }

type harness struct {
	router   *router.Router
	clock    *clock.Fake
	notifier *stubNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	if err != nil {
		t.Fatal(err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatal(err)
	}

	h := &harness{
		router: router.NewRouter(router.Config{
			Config:      cfg,
			UUID:        staticID{},
			Instrument:  instrument.NewNoop(),
			ServiceName: "otpgate",
		}),
		clock:    clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		notifier: &stubNotifier{},
	}

	uc := usecase.New(usecase.Dependency{
		RepoStore:     store.NewMemory(),
		RepoNotifier:  h.notifier,
		RepoMessaging: discardEvents{},
		Validator:     v,
		HMAC:          hash.NewHMACSHA256("secret"),
		Generator:     fixedCode(123456),
		Clock:         h.clock,
		Instrument:    instrument.NewNoop(),
		Policy:        usecase.DefaultPolicy(),
	})
	RegisterHTTPEndpoint(h.router, uc, nil, time.Minute)

	return h
}

func (h *harness) do(t *testing.T, method, path, body string) (int, http.Header, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, rec.Header(), out
}

func TestHTTP_SendVerifyFlow(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	code, _, body := h.do(t, http.MethodPost, "/api/v1/otp/send", `{"phone":"9000000001"}`)

	// Assert
	if code != http.StatusOK || body["message"] != "OTP sent to +919000000001" {
		t.Fatalf("send = %d %v", code, body)
	}

	code, _, body = h.do(t, http.MethodPost, "/api/v1/otp/verify", `{"phone":"9000000001","otp":"123456"}`)
	if code != http.StatusOK || body["message"] != "OTP verified successfully" {
		t.Fatalf("verify = %d %v", code, body)
	}

	code, _, body = h.do(t, http.MethodPost, "/api/v1/otp/verify", `{"phone":"9000000001","otp":"123456"}`)
	if code != http.StatusBadRequest || body["message"] != "OTP not requested or expired" {
		t.Errorf("replay = %d %v", code, body)
	}
}

func TestHTTP_ResendThrottled(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/v1/otp/send", `{"phone":"9000000001"}`)

	h.clock.Advance(30 * time.Second)
	code, header, body := h.do(t, http.MethodPost, "/api/v1/otp/resend", `{"phone":"9000000001"}`)

	if code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if header.Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q", header.Get("Retry-After"))
	}
	if fields, _ := body["error"].(map[string]any); fields["retry_after_seconds"] != "30" {
		t.Errorf("error = %v", body["error"])
	}

	h.clock.Advance(31 * time.Second)
	code, _, body = h.do(t, http.MethodPost, "/api/v1/otp/resend", `{"phone":"9000000001"}`)
	if code != http.StatusOK || body["message"] != "OTP resent to +919000000001" {
		t.Errorf("resend = %d %v", code, body)
	}
}

func TestHTTP_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		setup   func(h *harness)
		code    int
		message string
	}{
		{name: "send empty phone", path: "/api/v1/otp/send", body: `{"phone":""}`, code: http.StatusUnprocessableEntity, message: "Phone number required"},
		{name: "resend missing phone", path: "/api/v1/otp/resend", body: `{}`, code: http.StatusUnprocessableEntity, message: "Phone number required"},
		{name: "verify missing otp", path: "/api/v1/otp/verify", body: `{"phone":"9000000001"}`, code: http.StatusUnprocessableEntity, message: "Phone and OTP are required"},
		{name: "verify non numeric", path: "/api/v1/otp/verify", body: `{"phone":"9000000001","otp":"abc"}`, code: http.StatusUnprocessableEntity, message: "OTP must be numeric"},
		{name: "malformed json", path: "/api/v1/otp/send", body: `{"phone":`, code: http.StatusBadRequest},
		{name: "unknown field", path: "/api/v1/otp/send", body: `{"phone":"1","extra":true}`, code: http.StatusBadRequest},
		{name: "verify without send", path: "/api/v1/otp/verify", body: `{"phone":"9000000001","otp":"123456"}`, code: http.StatusBadRequest, message: "OTP not requested or expired"},
		{
			name:    "gateway failure",
			path:    "/api/v1/otp/send",
			body:    `{"phone":"9000000001"}`,
			setup:   func(h *harness) { h.notifier.err = errors.New("provider down") },
			code:    http.StatusBadGateway,
			message: "Failed to send OTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.setup != nil {
				tt.setup(h)
			}

			code, _, body := h.do(t, http.MethodPost, tt.path, tt.body)

			if code != tt.code {
				t.Errorf("status = %d, want %d (%v)", code, tt.code, body)
			}
			if tt.message != "" && body["message"] != tt.message {
				t.Errorf("message = %v, want %q", body["message"], tt.message)
			}
		})
	}
}

func TestHTTP_Health(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/v1/otp/send", `{"phone":"9000000001"}`)

	code, _, body := h.do(t, http.MethodGet, "/health", "")

	if code != http.StatusOK || body["message"] != "ok" {
		t.Fatalf("health = %d %v", code, body)
	}
	if data, _ := body["data"].(map[string]any); data["live_credentials"] != float64(1) {
		t.Errorf("data = %v", body["data"])
	}
}
