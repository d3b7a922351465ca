package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

func TestMemory_PutGetDelete(t *testing.T) {
	// Arrange
	m := NewMemory()
	now := time.Now()
	c := entity.Credential{Phone: "9000000001", CodeDigest: "d1", IssuedAt: now, ExpiresAt: now.Add(5 * time.Minute)}

	// Act
	m.Put(c)
	got, ok := m.Get("9000000001")

	// Assert
	if !ok || !got.SameIssue(c) {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	c.CodeDigest = "d2"
	m.Put(c)
	if got, _ := m.Get("9000000001"); got.CodeDigest != "d2" {
		t.Errorf("overwrite lost: %+v", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len() after overwrite = %d, want 1", m.Len())
	}

	m.Delete("9000000001")
	m.Delete("9000000001")
	if _, ok := m.Get("9000000001"); ok {
		t.Error("record still present after Delete")
	}
	if m.Len() != 0 {
		t.Errorf("Len() after delete = %d, want 0", m.Len())
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Put(entity.Credential{Phone: "p", FailedAttempts: 1})

	c, _ := m.Get("p")
	c.FailedAttempts = 9

	if got, _ := m.Get("p"); got.FailedAttempts != 1 {
		t.Errorf("stored record mutated through copy: %d", got.FailedAttempts)
	}
}

func TestMemory_LockSerializesSamePhone(t *testing.T) {
	m := NewMemory()
	m.Put(entity.Credential{Phone: "p"})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			unlock := m.Lock("p")
			defer unlock()

			c, _ := m.Get("p")
			c.FailedAttempts++
			m.Put(c)
		})
	}
	wg.Wait()

	if c, _ := m.Get("p"); c.FailedAttempts != 100 {
		t.Errorf("FailedAttempts = %d, want 100", c.FailedAttempts)
	}
}

func TestMemory_LockIndependentPhones(t *testing.T) {
	m := NewMemory()

	unlockA := m.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := m.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by lock on a")
	}
}

func TestMemory_UnlockIdempotent(t *testing.T) {
	m := NewMemory()

	unlock := m.Lock("p")
	unlock()
	unlock()

	relock := m.Lock("p")
	relock()
}

func TestMemory_Sweep(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	for i := range 10 {
		m.Put(entity.Credential{
			Phone:     fmt.Sprintf("900000000%d", i),
			ExpiresAt: now.Add(time.Duration(i-5) * time.Minute),
		})
	}

	removed := m.Sweep(func(c entity.Credential) bool { return !c.Expired(now) })

	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}
	if m.Len() != 5 {
		t.Errorf("Len() = %d, want 5", m.Len())
	}
	if _, ok := m.Get("9000000009"); !ok {
		t.Error("live record swept")
	}
}

func TestMemory_LastSendOutlivesCredential(t *testing.T) {
	// Arrange
	m := NewMemory()
	now := time.Now()
	m.Put(entity.Credential{Phone: "p", IssuedAt: now})
	m.PutLastSend("p", entity.SendMark{At: now, Delivered: true, LastDeliveredAt: now})

	// Act
	m.Delete("p")

	// Assert
	if mark, ok := m.LastSend("p"); !ok || !mark.At.Equal(now) {
		t.Errorf("LastSend() = %+v, %v, want mark at %v", mark, ok, now)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}

	m.DeleteLastSend("p")
	if _, ok := m.LastSend("p"); ok {
		t.Error("mark still present after DeleteLastSend")
	}
}

func TestMemory_SweepSends(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	for i := range 10 {
		m.PutLastSend(fmt.Sprintf("900000000%d", i), entity.SendMark{At: now.Add(-time.Duration(i) * 15 * time.Second)})
	}

	removed := m.SweepSends(now, time.Minute)

	if removed != 6 {
		t.Errorf("removed = %d, want 6", removed)
	}
	if _, ok := m.LastSend("9000000003"); !ok {
		t.Error("mark inside cooldown swept")
	}
	if _, ok := m.LastSend("9000000004"); ok {
		t.Error("mark at cooldown boundary kept")
	}
}
