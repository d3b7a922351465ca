// Package store keeps live OTP credentials in process memory.
package store

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"go.uber.org/atomic"
)

const shardCount = 32

type keyLock struct {
	mu   sync.Mutex
	refs int
}

type table[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func newTable[V any]() *table[V] {
	return &table[V]{items: make(map[string]V)}
}

func (t *table[V]) get(phone string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.items[phone]
	return v, ok
}

// put reports whether phone was absent before.
func (t *table[V]) put(phone string, v V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.items[phone]
	t.items[phone] = v
	return !exists
}

// remove reports whether phone was present.
func (t *table[V]) remove(phone string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.items[phone]
	delete(t.items, phone)
	return exists
}

func (t *table[V]) rejected(keep func(V) bool) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return lo.Keys(lo.OmitBy(t.items, func(_ string, v V) bool { return keep(v) }))
}

type shard struct {
	creds *table[entity.Credential]
	sends *table[entity.SendMark]

	locksMu sync.Mutex
	locks   map[string]*keyLock
}

// Memory is a sharded in-memory store of credentials and send marks with
// per-phone locking.
//
// Every single read or write is atomic. Multi-step sequences hold the phone's
// Lock; different phones never share a key lock.
type Memory struct {
	shards [shardCount]*shard
	live   *atomic.Int64
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	m := &Memory{live: atomic.NewInt64(0)}
	for i := range m.shards {
		m.shards[i] = &shard{
			creds: newTable[entity.Credential](),
			sends: newTable[entity.SendMark](),
			locks: make(map[string]*keyLock),
		}
	}
	return m
}

func (m *Memory) shardFor(phone string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return m.shards[h.Sum32()%shardCount]
}

// Lock acquires the phone's mutex and returns its release function.
func (m *Memory) Lock(phone string) (unlock func()) {
	sh := m.shardFor(phone)

	sh.locksMu.Lock()
	kl, ok := sh.locks[phone]
	if !ok {
		kl = &keyLock{}
		sh.locks[phone] = kl
	}
	kl.refs++
	sh.locksMu.Unlock()

	kl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.mu.Unlock()

			sh.locksMu.Lock()
			kl.refs--
			if kl.refs == 0 {
				delete(sh.locks, phone)
			}
			sh.locksMu.Unlock()
		})
	}
}

// Get returns a copy of the phone's record without evaluating expiry.
func (m *Memory) Get(phone string) (entity.Credential, bool) {
	return m.shardFor(phone).creds.get(phone)
}

// Put stores c under c.Phone, replacing any previous record.
func (m *Memory) Put(c entity.Credential) {
	if m.shardFor(c.Phone).creds.put(c.Phone, c) {
		m.live.Inc()
	}
}

// Delete removes the phone's record; absent records are ignored.
func (m *Memory) Delete(phone string) {
	if m.shardFor(phone).creds.remove(phone) {
		m.live.Dec()
	}
}

// LastSend returns the phone's send mark. Deleting the credential leaves it in place.
func (m *Memory) LastSend(phone string) (entity.SendMark, bool) {
	return m.shardFor(phone).sends.get(phone)
}

// PutLastSend replaces the phone's send mark.
func (m *Memory) PutLastSend(phone string, mark entity.SendMark) {
	m.shardFor(phone).sends.put(phone, mark)
}

// DeleteLastSend forgets the phone's send mark.
func (m *Memory) DeleteLastSend(phone string) {
	m.shardFor(phone).sends.remove(phone)
}

// Sweep deletes every record keep rejects and returns how many were removed.
// Each candidate is re-checked under its phone lock.
func (m *Memory) Sweep(keep func(entity.Credential) bool) int {
	removed := 0
	for _, sh := range m.shards {
		for _, phone := range sh.creds.rejected(keep) {
			unlock := m.Lock(phone)
			if c, ok := m.Get(phone); ok && !keep(c) {
				m.Delete(phone)
				removed++
			}
			unlock()
		}
	}
	return removed
}

// SweepSends deletes every send mark older than interval at now.
func (m *Memory) SweepSends(now time.Time, interval time.Duration) int {
	keep := func(mark entity.SendMark) bool { return mark.Cooldown(now, interval) > 0 }

	removed := 0
	for _, sh := range m.shards {
		for _, phone := range sh.sends.rejected(keep) {
			unlock := m.Lock(phone)
			if mark, ok := m.LastSend(phone); ok && !keep(mark) {
				m.DeleteLastSend(phone)
				removed++
			}
			unlock()
		}
	}
	return removed
}

// Len returns the number of stored credentials.
func (m *Memory) Len() int {
	return int(m.live.Load())
}
