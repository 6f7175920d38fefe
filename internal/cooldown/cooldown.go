package cooldown

import (
	"sync"
	"time"
)

// DefaultDuration applies when the server reports a cooldown without saying
// how long it lasts.
const DefaultDuration = 10 * time.Second

// Mirror tracks the client-side copy of the server's per-sender send
// cooldown. It is a display optimization only; the server independently
// enforces the real window and re-announces it on violation.
type Mirror struct {
	mu      sync.Mutex
	now     func() time.Time
	tick    time.Duration
	until   time.Time
	running bool
	quit    chan struct{}

	onTick  func(remaining int)
	onClear func()
}

// New builds a mirror. onTick fires at least once per second while blocked
// with the remaining whole seconds; onClear fires once when the window ends
// so the send affordances can re-enable. Either callback may be nil.
func New(onTick func(remaining int), onClear func()) *Mirror {
	return &Mirror{
		now:     time.Now,
		tick:    time.Second,
		onTick:  onTick,
		onClear: onClear,
	}
}

// IsBlocked reports whether sends should be held back right now.
func (m *Mirror) IsBlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Before(m.until)
}

// Remaining returns the whole seconds left in the window, rounded up, zero
// when unblocked.
func (m *Mirror) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingLocked()
}

func (m *Mirror) remainingLocked() int {
	left := m.until.Sub(m.now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// Start resets the deadline to now+d and (re)starts the display refresh.
// Re-invocation replaces the deadline, it never stacks. Non-positive
// durations fall back to DefaultDuration.
func (m *Mirror) Start(d time.Duration) {
	if d <= 0 {
		d = DefaultDuration
	}
	m.mu.Lock()
	m.until = m.now().Add(d)
	remaining := m.remainingLocked()
	if !m.running {
		m.running = true
		m.quit = make(chan struct{})
		go m.loop(m.quit)
	}
	onTick := m.onTick
	m.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
}

// Stop cancels the refresh loop without clearing the deadline. Used on
// shutdown.
func (m *Mirror) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		close(m.quit)
		m.running = false
	}
}

func (m *Mirror) loop(quit chan struct{}) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			if !m.step() {
				return
			}
		}
	}
}

// step refreshes the display once and reports whether the loop should keep
// running.
func (m *Mirror) step() bool {
	m.mu.Lock()
	remaining := m.remainingLocked()
	if remaining == 0 {
		m.running = false
	}
	onTick, onClear := m.onTick, m.onClear
	m.mu.Unlock()

	if remaining == 0 {
		if onClear != nil {
			onClear()
		}
		return false
	}
	if onTick != nil {
		onTick(remaining)
	}
	return true
}
