package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return out
}

func TestBuildLogger_CorrelationAndService(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := buildLogger(&buf, "otpgate", slog.LevelInfo, nil, nil)
	ctx := SetCorrelationID(context.Background(), "cid-1")

	// Act
	logger.InfoContext(ctx, "otp issued", "phone", "9000000001")

	// Assert
	line := decodeLine(t, &buf)
	if line["_cID"] != "cid-1" {
		t.Errorf("_cID = %v, want cid-1", line["_cID"])
	}
	if line["service"] != "otpgate" {
		t.Errorf("service = %v, want otpgate", line["service"])
	}
	if line["severity"] != "INFO" {
		t.Errorf("severity = %v, want INFO", line["severity"])
	}
	if _, ok := line["ts"]; !ok {
		t.Error("ts key missing")
	}
}

func TestBuildLogger_WithoutCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger(&buf, "otpgate", slog.LevelInfo, nil, nil)

	logger.Info("startup")

	if _, ok := decodeLine(t, &buf)["_cID"]; ok {
		t.Error("_cID present without correlation id")
	}
}

func TestBuildLogger_MasksFields(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger(&buf, "otpgate", slog.LevelInfo, nil, []string{"OTP", " code "})

	logger.With("otp", "123456").Info("verify",
		"code", "654321",
		"body", `{"phone":"9000000001","otp":"111111"}`,
	)

	line := decodeLine(t, &buf)
	if line["otp"] != "***" {
		t.Errorf("otp = %v, want masked", line["otp"])
	}
	if line["code"] != "***" {
		t.Errorf("code = %v, want masked", line["code"])
	}
	if line["body"] != `{"otp":"***","phone":"9000000001"}` {
		t.Errorf("body = %v, want masked json", line["body"])
	}
}

func TestBuildLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger(&buf, "otpgate", slog.LevelWarn, nil, nil)

	logger.Info("dropped")

	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGetCorrelationID(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != invalidCorrelationID {
		t.Errorf("GetCorrelationID(empty) = %q", got)
	}
	ctx := SetCorrelationID(context.Background(), "")
	if got := GetCorrelationID(ctx); got != invalidCorrelationID {
		t.Errorf("GetCorrelationID(blank set) = %q", got)
	}
}
