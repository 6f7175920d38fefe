package chat

import (
	"fmt"
	"sync"
)

type metrics struct {
	mu        sync.Mutex
	sent      int
	received  int
	edits     int
	deletes   int
	reactions int
	cooldowns int
}

func newMetrics() *metrics { return &metrics{} }

func (m *metrics) IncSent() { m.mu.Lock(); m.sent++; m.mu.Unlock() }
func (m *metrics) IncReceived() { m.mu.Lock(); m.received++; m.mu.Unlock() }
func (m *metrics) IncEdit() { m.mu.Lock(); m.edits++; m.mu.Unlock() }
func (m *metrics) IncDelete() { m.mu.Lock(); m.deletes++; m.mu.Unlock() }
func (m *metrics) IncReaction() { m.mu.Lock(); m.reactions++; m.mu.Unlock() }
func (m *metrics) IncCooldown() { m.mu.Lock(); m.cooldowns++; m.mu.Unlock() }

func (m *metrics) Snapshot() metricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return metricsSnapshot{
		Sent:      m.sent,
		Received:  m.received,
		Edits:     m.edits,
		Deletes:   m.deletes,
		Reactions: m.reactions,
		Cooldowns: m.cooldowns,
	}
}

type metricsSnapshot struct {
	Sent      int
	Received  int
	Edits     int
	Deletes   int
	Reactions int
	Cooldowns int
}

func (s metricsSnapshot) String() string {
	return fmt.Sprintf("sent=%d received=%d edits=%d deletes=%d reactions=%d cooldowns=%d",
		s.Sent, s.Received, s.Edits, s.Deletes, s.Reactions, s.Cooldowns)
}
