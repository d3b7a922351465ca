package config

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const sampleYAML = `
modules:
  otp:
    enabled: true
    expiry_seconds: 300
    country_prefix: "+91"
    max_verify_attempts: 5
instrument:
  mask_fields: "otp, code,,authorization"
app:
  maintenance:
    endpoints: "POST:/api/v1/otp/send:down"
`

func TestNewViperFromBytes(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	// Act & Assert
	if !cfg.GetBool("modules.otp.enabled") {
		t.Error("modules.otp.enabled = false, want true")
	}
	if got := cfg.GetSecond("modules.otp.expiry_seconds"); got != 5*time.Minute {
		t.Errorf("GetSecond = %v, want 5m", got)
	}
	if got := cfg.GetString("modules.otp.country_prefix"); got != "+91" {
		t.Errorf("GetString = %q, want +91", got)
	}
	if got := cfg.GetInt("modules.otp.max_verify_attempts"); got != 5 {
		t.Errorf("GetInt = %d, want 5", got)
	}
	if got := cfg.GetInt("modules.otp.missing"); got != 0 {
		t.Errorf("missing key = %d, want 0", got)
	}
	if !cfg.IsSet("modules.otp.max_verify_attempts") || cfg.IsSet("modules.otp.missing") {
		t.Error("IsSet does not distinguish present and missing keys")
	}
}

func TestViper_GetArrayAndMap(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	wantArr := []string{"otp", "code", "authorization"}
	if got := cfg.GetArray("instrument.mask_fields"); !reflect.DeepEqual(got, wantArr) {
		t.Errorf("GetArray = %v, want %v", got, wantArr)
	}
	if got := cfg.GetArray("instrument.none"); got != nil {
		t.Errorf("GetArray(missing) = %v, want nil", got)
	}

	wantMap := map[string]string{"POST": "/api/v1/otp/send:down"}
	if got := cfg.GetMap("app.maintenance.endpoints"); !reflect.DeepEqual(got, wantMap) {
		t.Errorf("GetMap = %v, want %v", got, wantMap)
	}
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("OTPGATE_MODULES_OTP_COUNTRY_PREFIX", "+62")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes: %v", err)
	}

	if got := cfg.GetString("modules.otp.country_prefix"); got != "+62" {
		t.Errorf("GetString = %q, want +62", got)
	}
}

func TestNewViperFromBytes_MissingType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	if !errors.Is(err, ErrConfigType) {
		t.Fatalf("err = %v, want ErrConfigType", err)
	}
}
