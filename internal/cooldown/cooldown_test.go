package cooldown

import (
	"sync"
	"testing"
	"time"
)

func TestBlockedWindow(t *testing.T) {
	base := time.Now()
	clock := base
	m := New(nil, nil)
	m.now = func() time.Time { return clock }

	m.Start(10 * time.Second)
	m.Stop()

	clock = base.Add(5 * time.Second)
	if !m.IsBlocked() {
		t.Fatal("expected blocked at t=5")
	}
	if got := m.Remaining(); got != 5 {
		t.Fatalf("expected 5s remaining, got %d", got)
	}
	clock = base.Add(11 * time.Second)
	if m.IsBlocked() {
		t.Fatal("expected unblocked at t=11")
	}
	if got := m.Remaining(); got != 0 {
		t.Fatalf("expected 0s remaining, got %d", got)
	}
}

func TestStartReplacesDeadline(t *testing.T) {
	base := time.Now()
	clock := base
	m := New(nil, nil)
	m.now = func() time.Time { return clock }

	m.Start(10 * time.Second)
	m.Start(3 * time.Second)
	m.Stop()

	if got := m.Remaining(); got != 3 {
		t.Fatalf("last writer should win, got %ds", got)
	}
	clock = base.Add(4 * time.Second)
	if m.IsBlocked() {
		t.Fatal("durations must not stack")
	}
}

func TestZeroDurationFallsBackToDefault(t *testing.T) {
	base := time.Now()
	clock := base
	m := New(nil, nil)
	m.now = func() time.Time { return clock }

	m.Start(0)
	m.Stop()
	if got := m.Remaining(); got != int(DefaultDuration/time.Second) {
		t.Fatalf("expected default cooldown, got %ds", got)
	}
}

func TestRefreshLoopSelfCancels(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	cleared := make(chan struct{})
	var clearOnce sync.Once

	m := New(func(remaining int) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() {
		clearOnce.Do(func() { close(cleared) })
	})
	m.tick = 5 * time.Millisecond

	m.Start(30 * time.Millisecond)

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("cooldown never cleared")
	}
	if m.IsBlocked() {
		t.Fatal("mirror still blocked after clear")
	}
	mu.Lock()
	n := len(ticks)
	mu.Unlock()
	if n == 0 {
		t.Fatal("display refresh never ran")
	}
	// The loop stopped, so no further ticks arrive.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	if len(ticks) != n {
		t.Fatalf("refresh kept running after clear: %d -> %d", n, len(ticks))
	}
	mu.Unlock()
}

func TestRestartAfterClear(t *testing.T) {
	cleared := make(chan struct{}, 2)
	m := New(nil, func() { cleared <- struct{}{} })
	m.tick = 5 * time.Millisecond

	m.Start(15 * time.Millisecond)
	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("first window never cleared")
	}

	m.Start(15 * time.Millisecond)
	if !m.IsBlocked() {
		t.Fatal("restart should block again")
	}
	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("second window never cleared")
	}
}
