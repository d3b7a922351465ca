package entity

import "time"

// Credential is the live one-time code issued to a phone.
type Credential struct {
	Phone string
	// CodeDigest is the keyed digest of the code; the plain code is never stored.
	CodeDigest     string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	FailedAttempts int
	// Delivered is set once the gateway accepted the code.
	Delivered bool
	// Fallback is the newest delivered credential this one replaced. A failed
	// delivery restores it.
	Fallback *Credential
}

// Expired reports whether the code can no longer be verified at now.
// The expiry instant itself is still valid.
func (c Credential) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// SameIssue reports whether o is the record produced by the same Send/Resend call.
func (c Credential) SameIssue(o Credential) bool {
	return c.IssuedAt.Equal(o.IssuedAt) && c.CodeDigest == o.CodeDigest
}

// Superseded returns the fallback a newer credential should carry when it
// replaces c.
func (c Credential) Superseded() *Credential {
	if !c.Delivered {
		return c.Fallback
	}
	d := c
	d.Fallback = nil
	return &d
}

// SendMark tracks the most recent Send/Resend for a phone. It outlives the
// credential so that verifying or invalidating a code keeps the cooldown.
type SendMark struct {
	At        time.Time
	Delivered bool
	// LastDeliveredAt is the newest delivered send at or before At; zero when none.
	LastDeliveredAt time.Time
}

// Cooldown returns how long a resend must still wait at now.
func (m SendMark) Cooldown(now time.Time, interval time.Duration) time.Duration {
	return max(interval-now.Sub(m.At), 0)
}

// Revert returns the mark that applies when the send at At failed.
func (m SendMark) Revert() (SendMark, bool) {
	if m.LastDeliveredAt.IsZero() {
		return SendMark{}, false
	}
	return SendMark{At: m.LastDeliveredAt, Delivered: true, LastDeliveredAt: m.LastDeliveredAt}, true
}

// State is the logical lifecycle position of a phone.
type State int

const (
	StateNoActiveCode State = iota
	StateCodeActive
	StateCodeExpired
)

func (s State) String() string {
	switch s {
	case StateCodeActive:
		return "CODE_ACTIVE"
	case StateCodeExpired:
		return "CODE_EXPIRED"
	default:
		return "NO_ACTIVE_CODE"
	}
}

// StateOf derives the State of a lookup result at now.
func StateOf(c Credential, found bool, now time.Time) State {
	switch {
	case !found:
		return StateNoActiveCode
	case c.Expired(now):
		return StateCodeExpired
	default:
		return StateCodeActive
	}
}
