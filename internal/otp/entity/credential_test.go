package entity

import (
	"errors"
	"testing"
	"time"
)

func TestCredential_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Credential{IssuedAt: issued, ExpiresAt: issued.Add(5 * time.Minute)}

	if c.Expired(c.ExpiresAt) {
		t.Error("expired exactly at ExpiresAt")
	}
	if !c.Expired(c.ExpiresAt.Add(time.Nanosecond)) {
		t.Error("not expired after ExpiresAt")
	}
}

func TestStateOf(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	live := Credential{ExpiresAt: now.Add(time.Minute)}
	dead := Credential{ExpiresAt: now.Add(-time.Second)}

	tests := []struct {
		c     Credential
		found bool
		want  State
	}{
		{Credential{}, false, StateNoActiveCode},
		{live, true, StateCodeActive},
		{dead, true, StateCodeExpired},
	}
	for _, tt := range tests {
		if got := StateOf(tt.c, tt.found, now); got != tt.want {
			t.Errorf("StateOf() = %s, want %s", got, tt.want)
		}
	}
}

func TestCredential_SameIssue(t *testing.T) {
	now := time.Now()
	a := Credential{IssuedAt: now, CodeDigest: "aa"}

	if !a.SameIssue(Credential{IssuedAt: now, CodeDigest: "aa", FailedAttempts: 2}) {
		t.Error("attempt counter must not change identity")
	}
	if a.SameIssue(Credential{IssuedAt: now, CodeDigest: "bb"}) {
		t.Error("different digest reported as same issue")
	}
}

func TestNewThrottledError(t *testing.T) {
	tests := map[time.Duration]int{
		30 * time.Second:                      30,
		29*time.Second + time.Millisecond:     30,
		59*time.Second + 999*time.Millisecond: 60,
		time.Nanosecond:                       1,
		0:                                     1,
	}
	for remaining, want := range tests {
		if got := NewThrottledError(remaining).RetryAfterSeconds; got != want {
			t.Errorf("NewThrottledError(%v) = %d, want %d", remaining, got, want)
		}
	}

	if !errors.Is(NewThrottledError(time.Second), ErrThrottled) {
		t.Error("ThrottledError does not match ErrThrottled")
	}
}

func TestCredential_Superseded(t *testing.T) {
	now := time.Now()
	older := &Credential{CodeDigest: "old", IssuedAt: now.Add(-time.Minute), Delivered: true}

	pending := Credential{CodeDigest: "p", IssuedAt: now, Fallback: older}
	if got := pending.Superseded(); got != older {
		t.Errorf("undelivered Superseded() = %+v, want its own fallback", got)
	}

	delivered := Credential{CodeDigest: "d", IssuedAt: now, Delivered: true, Fallback: older}
	got := delivered.Superseded()
	if got == nil || !got.SameIssue(delivered) || got.Fallback != nil {
		t.Errorf("delivered Superseded() = %+v, want itself without fallback", got)
	}
}

func TestSendMark(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := SendMark{At: at}

	if got := m.Cooldown(at.Add(20*time.Second), time.Minute); got != 40*time.Second {
		t.Errorf("Cooldown() = %v, want 40s", got)
	}
	if got := m.Cooldown(at.Add(2*time.Minute), time.Minute); got != 0 {
		t.Errorf("Cooldown() after interval = %v, want 0", got)
	}

	if _, ok := m.Revert(); ok {
		t.Error("Revert() without a delivered send reported a mark")
	}

	m.LastDeliveredAt = at.Add(-time.Minute)
	prev, ok := m.Revert()
	if !ok || !prev.At.Equal(m.LastDeliveredAt) || !prev.Delivered {
		t.Errorf("Revert() = %+v, %v", prev, ok)
	}
}
