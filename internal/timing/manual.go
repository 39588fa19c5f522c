package timing

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance is called.
// Scheduled functions run synchronously inside Advance, in deadline
// order, which makes timer-driven code deterministic in tests.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
}

// NewManual creates a manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{
		clock:    m,
		deadline: m.now.Add(d),
		fn:       f,
	}
	m.pending = append(m.pending, t)
	return t
}

// Pending reports how many timers are scheduled. Tests use it to wait
// until code under test has scheduled work before advancing.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d, firing every timer whose
// deadline falls inside the window. A fired function may schedule new
// timers; those fire too if they land inside the same window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.mu.Lock()
		m.now = t.deadline
		m.mu.Unlock()
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// nextDue pops the earliest pending timer with deadline <= target.
func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].deadline.Before(m.pending[j].deadline)
	})
	for i, t := range m.pending {
		if t.deadline.After(target) {
			break
		}
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		return t
	}
	return nil
}

func (m *Manual) remove(t *manualTimer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return true
		}
	}
	return false
}

type manualTimer struct {
	clock    *Manual
	deadline time.Time
	fn       func()
}

func (t *manualTimer) Stop() bool { return t.clock.remove(t) }
