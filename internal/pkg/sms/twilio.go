package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

const (
	defaultTwilioBaseURL = "https://api.twilio.com"
	defaultTwilioTimeout = 10 * time.Second
	maxErrorBodyBytes    = 4 * 1024
)

// ErrTwilioNotConfigured is returned when credentials or the sender number are missing.
var ErrTwilioNotConfigured = errors.New("sms: twilio account sid, auth token and from number are required")

// Only statuses returned before Twilio accepts a message are retried. Other
// 5xx answers may follow an accepted message.
var retryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusServiceUnavailable,
}

// errRequestWritten marks a transport failure after the request reached the wire.
var errRequestWritten = errors.New("sms: twilio request already sent")

// TwilioConfig configures the Twilio client.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	// From is the Twilio phone number messages are sent from.
	From string

	// BaseURL overrides the API host, used by tests.
	BaseURL string
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a retryable failure.
	MaxRetries uint64
	// RetryBase is the first backoff interval.
	RetryBase time.Duration
}

// APIError is a non-2xx answer from the Twilio API.
type APIError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sms: twilio status=%d code=%d message=%s", e.Status, e.Code, e.Message)
}

// Twilio sends SMS through the Twilio Messages REST API.
type Twilio struct {
	cfg  TwilioConfig
	http *http.Client
}

// NewTwilio validates cfg and returns a ready client.
func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrTwilioNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTwilioBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTwilioTimeout
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}

	return &Twilio{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Send posts the message with capped exponential backoff. It retries 429 and
// 503 answers and transport failures that happened before the request was
// written, so a message is never submitted twice.
func (t *Twilio) Send(ctx context.Context, destination, message string) error {
	if strings.TrimSpace(destination) == "" {
		return ErrDestinationRequired
	}

	form := url.Values{}
	form.Set("To", destination)
	form.Set("From", t.cfg.From)
	form.Set("Body", message)
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.cfg.BaseURL, url.PathEscape(t.cfg.AccountSID))

	b := retry.NewExponential(t.cfg.RetryBase)
	b = retry.WithCappedDuration(2*time.Second, b)
	b = retry.WithMaxRetries(t.cfg.MaxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := t.post(ctx, endpoint, form)

		var apiErr *APIError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &apiErr) && !lo.Contains(retryableStatuses, apiErr.Status):
			return err
		case ctx.Err() != nil:
			return err
		case errors.Is(err, errRequestWritten):
			return err
		default:
			return retry.RetryableError(err)
		}
	})
}

func (t *Twilio) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	wrote := atomic.NewBool(false)
	req = req.WithContext(httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { wrote.Store(true) },
	}))

	resp, err := t.http.Do(req)
	if err != nil {
		if wrote.Load() {
			return fmt.Errorf("%w: %w", errRequestWritten, err)
		}
		return fmt.Errorf("sms: twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		//nolint:errcheck // drain for connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.Status = resp.StatusCode

	return apiErr
}
