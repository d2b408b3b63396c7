package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/mediadex/mediadex/internal/metrics"
)

// Memory is an in-process TTL+LRU cache. A hash map gives O(1) lookups and a
// doubly-linked list keeps LRU order; a background sweep removes expired
// entries even for keys never re-queried, bounding memory.
type Memory struct {
	ttl      time.Duration
	capacity int

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element

	stop     chan struct{}
	stopOnce sync.Once
}

type memoryEntry struct {
	key        string
	entry      Entry
	expiresAt  time.Time
	lastAccess time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-process cache and starts its sweep loop.
// Non-positive arguments fall back to the defaults.
func NewMemory(ttl time.Duration, capacity int, sweepInterval time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	m := &Memory{
		ttl:      ttl,
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
		stop:     make(chan struct{}),
	}
	go m.sweepLoop(sweepInterval)
	return m
}

// Get returns the entry for key. An expired entry behaves as a miss and is
// removed; a hit refreshes the last-access timestamp and LRU position.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return Entry{}, false, nil
	}

	me := elem.Value.(*memoryEntry)
	if time.Now().After(me.expiresAt) {
		m.removeLocked(elem)
		return Entry{}, false, nil
	}

	me.lastAccess = time.Now()
	m.ll.MoveToFront(elem)
	return me.entry, true, nil
}

// Set stores entry at key, evicting the entry with the oldest last-access
// when capacity is exceeded.
func (m *Memory) Set(_ context.Context, key string, entry Entry) error {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		me := elem.Value.(*memoryEntry)
		me.entry = entry
		me.expiresAt = now.Add(m.ttl)
		me.lastAccess = now
		m.ll.MoveToFront(elem)
		return nil
	}

	elem := m.ll.PushFront(&memoryEntry{
		key:        key,
		entry:      entry,
		expiresAt:  now.Add(m.ttl),
		lastAccess: now,
	})
	m.items[key] = elem

	for len(m.items) > m.capacity {
		if back := m.ll.Back(); back != nil {
			m.removeLocked(back)
		}
	}
	metrics.CacheEntries.Set(float64(len(m.items)))
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ll.Init()
	m.items = make(map[string]*list.Element, m.capacity)
	metrics.CacheEntries.Set(0)
	return nil
}

// Len returns the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweep loop.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory) removeLocked(elem *list.Element) {
	me := elem.Value.(*memoryEntry)
	m.ll.Remove(elem)
	delete(m.items, me.key)
	metrics.CacheEntries.Set(float64(len(m.items)))
}

func (m *Memory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

// sweep removes TTL-expired entries independent of access pattern.
func (m *Memory) sweep() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var next *list.Element
	for elem := m.ll.Front(); elem != nil; elem = next {
		next = elem.Next()
		if now.After(elem.Value.(*memoryEntry).expiresAt) {
			m.removeLocked(elem)
		}
	}
}
