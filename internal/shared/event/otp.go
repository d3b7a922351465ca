package event

const OTPIssuedDestination string = "otp_issued"
const OTPVerifiedDestination string = "otp_verified"

type OTPIssuedMessage struct {
	EventID     int64  `json:"event_id"`
	Phone       string `json:"phone"`
	Destination string `json:"destination"`
	IssuedAt    int64  `json:"issued_at"`
	ExpiresAt   int64  `json:"expires_at"`
	Resend      bool   `json:"resend"`
}

type OTPVerifiedMessage struct {
	EventID    int64  `json:"event_id"`
	Phone      string `json:"phone"`
	VerifiedAt int64  `json:"verified_at"`
}
