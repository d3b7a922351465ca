package inbound

import "time"

type SendRequest struct {
	Phone string `json:"phone"`
}

type SendResponse struct {
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r SendResponse) Message() string {
	return "OTP sent to " + r.Destination
}

type ResendRequest struct {
	Phone string `json:"phone"`
}

type ResendResponse struct {
	Destination string    `json:"destination"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r ResendResponse) Message() string {
	return "OTP resent to " + r.Destination
}

type VerifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type VerifyResponse struct {
	Verified bool `json:"verified"`
}

func (VerifyResponse) Message() string {
	return "OTP verified successfully"
}

type HealthResponse struct {
	Status          string `json:"status"`
	LiveCredentials int    `json:"live_credentials"`
}

func (HealthResponse) Message() string {
	return "ok"
}
