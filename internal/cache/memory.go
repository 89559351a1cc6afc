// SPDX-License-Identifier: MIT

package cache

import (
	"time"

	"github.com/guidepipe/tvg2x/internal/tvguide"
)

// Memory is an in-memory drop-in for Store, used by tests that need to
// exercise cache policy without touching disk.
type Memory struct {
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
	ttl      time.Duration
}

// NewMemory returns an empty in-memory cache using the wall clock.
func NewMemory() *Memory {
	return &Memory{now: time.Now, entries: make(map[string]memoryEntry)}
}

// SetClock overrides the clock, for TTL tests with simulated time.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Memory) Get(unit tvguide.Unit) ([]byte, bool) {
	e, ok := m.entries[Fingerprint(unit)]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.storedAt) > e.ttl {
		delete(m.entries, Fingerprint(unit))
		return nil, false
	}
	return e.payload, true
}

func (m *Memory) Put(unit tvguide.Unit, payload []byte, ttl time.Duration) error {
	m.entries[Fingerprint(unit)] = memoryEntry{
		payload:  append([]byte(nil), payload...),
		storedAt: m.now(),
		ttl:      ttl,
	}
	return nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	return len(m.entries)
}
