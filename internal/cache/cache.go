package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

// Cache stores computed search results as JSON documents.
type Cache interface {
	// Get decodes the entry stored under key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Key fingerprints one search request: the operation, the limits and every
// item field the algorithms read, in order.
func Key(operation string, capacity float64, maxPerShelf int, items []shelving.Item) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}

	write(operation)
	write(strconv.FormatFloat(capacity, 'g', -1, 64))
	write(strconv.Itoa(maxPerShelf))
	for _, item := range items {
		write(item.ID)
		write(item.Title)
		write(strconv.FormatFloat(item.Weight, 'g', -1, 64))
		write(strconv.FormatFloat(item.Value, 'g', -1, 64))
	}
	return operation + ":" + hex.EncodeToString(h.Sum(nil))
}

// sweepEvery is how many writes pass between sweeps of expired entries.
const sweepEvery = 64

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process Cache with a fixed time-to-live per entry.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]memoryEntry
	writes  int
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMemory creates a Memory cache. A non-positive ttl keeps entries forever.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]memoryEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && !entry.expiresAt.IsZero() && !m.clock().Before(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dst); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	return true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expiresAt = m.clock().Add(m.ttl)
	}

	m.mu.Lock()
	m.writes++
	if m.writes%sweepEvery == 0 {
		m.sweepLocked()
	}
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// sweepLocked drops expired entries. Keys derived from a replaced catalog are
// never read again, so Get alone would never release them.
func (m *Memory) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.clock()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
