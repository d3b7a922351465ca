package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

const testConfig = `
app:
  node_id: 1
  server:
    max_goroutine: 8
    cors: "*"
instrument:
  enabled: false
  service_name: otpgate
  log_level: error
hash:
  hmac:
    secret: test-secret
redis:
  enabled: false
messaging:
  driver: noop
sms:
  driver: log
modules:
  otp:
    enabled: true
    sweep_interval_seconds: 1
`

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel, config: cfg}
	a.build()

	return a
}

func post(t *testing.T, base, path, body string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Post(base+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode, out
}

func TestApp_ServeOTPRoutes(t *testing.T) {
	// Arrange
	a := newTestApp(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	errChan := a.Serve(l)
	base := "http://" + l.Addr().String()

	// Act
	code, body := post(t, base, "/api/v1/otp/send", `{"phone":"9000000001"}`)

	// Assert
	if code != http.StatusOK || body["message"] != "OTP sent to +919000000001" {
		t.Errorf("send = %d %v", code, body)
	}

	code, body = post(t, base, "/api/v1/otp/resend", `{"phone":"9000000001"}`)
	if code != http.StatusTooManyRequests {
		t.Errorf("resend = %d %v", code, body)
	}

	code, body = post(t, base, "/api/v1/otp/verify", `{"phone":"9000000001","otp":"12"}`)
	if code != http.StatusBadRequest || body["message"] != "Invalid OTP" {
		t.Errorf("verify = %d %v", code, body)
	}

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health = %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Stop(ctx)

	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Serve() error = %v, want ErrServerClosed", err)
	}
}
