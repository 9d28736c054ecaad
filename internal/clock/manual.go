package clock

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance instead of wall time. Callbacks run
// synchronously on the goroutine calling Advance
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	entries map[int]*manualEntry
}

type manualEntry struct {
	id       int
	interval time.Duration
	next     time.Duration
	fn       func()
}

// NewManual creates a manual scheduler at virtual time zero
func NewManual() *Manual {
	return &Manual{entries: make(map[int]*manualEntry)}
}

// Every implements Scheduler
func (m *Manual) Every(interval time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.entries[id] = &manualEntry{
		id:       id,
		interval: interval,
		next:     m.now + interval,
		fn:       fn,
	}

	return func() {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
	}
}

// Advance moves virtual time forward, firing every callback that falls due in
// time order. Ties fire in registration order
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var due *manualEntry
		for _, e := range m.entries {
			if e.next > target {
				continue
			}
			if due == nil || e.next < due.next || (e.next == due.next && e.id < due.id) {
				due = e
			}
		}
		if due == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = due.next
		due.next += due.interval
		fn := due.fn
		m.mu.Unlock()

		fn()
	}
}

// Seconds advances virtual time by n seconds
func (m *Manual) Seconds(n int) {
	m.Advance(time.Duration(n) * time.Second)
}

// Active returns the number of live registrations
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
