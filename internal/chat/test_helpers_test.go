package chat

import (
	"context"
	"sync"

	"webchat-client/internal/cooldown"
	"webchat-client/internal/view"
)

type recordingSink struct {
	mu        sync.Mutex
	refreshes [][]view.Row
	notices   []string
	cooldowns []int
}

func (s *recordingSink) Refresh(rows []view.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]view.Row, len(rows))
	copy(snapshot, rows)
	s.refreshes = append(s.refreshes, snapshot)
}

func (s *recordingSink) ShowNotice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
}

func (s *recordingSink) ShowCooldown(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns = append(s.cooldowns, remaining)
}

func (s *recordingSink) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.notices))
	copy(out, s.notices)
	return out
}

func (s *recordingSink) LastNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		return ""
	}
	return s.notices[len(s.notices)-1]
}

type sentText struct {
	Msg string
}

type sentImage struct {
	Image    string
	FileName string
}

type sentEdit struct {
	MessageID string
	Content   string
}

type sentReaction struct {
	MessageID string
	Emoji     string
}

// recordingSender captures outbound traffic instead of touching a socket.
type recordingSender struct {
	mu        sync.Mutex
	texts     []sentText
	images    []sentImage
	edits     []sentEdit
	deletes   []string
	reactions []sentReaction
}

func (s *recordingSender) SendText(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, sentText{Msg: msg})
}

func (s *recordingSender) SendImage(image, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, sentImage{Image: image, FileName: fileName})
}

func (s *recordingSender) RequestEdit(messageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, sentEdit{MessageID: messageID, Content: content})
}

func (s *recordingSender) RequestDelete(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, messageID)
}

func (s *recordingSender) ToggleReaction(messageID, emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append(s.reactions, sentReaction{MessageID: messageID, Emoji: emoji})
}

func (s *recordingSender) Texts() []sentText {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentText, len(s.texts))
	copy(out, s.texts)
	return out
}

func newTestRuntime(self, recipient string) (*Runtime, *recordingSink, *recordingSender) {
	sink := &recordingSink{}
	conn := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        &Config{Username: self, Recipient: recipient},
		controller: view.NewController(self, sink),
		sink:       sink,
		conn:       conn,
		metrics:    newMetrics(),
	}
	rt.cool = cooldown.New(sink.ShowCooldown, func() { sink.ShowCooldown(0) })
	return rt, sink, conn
}
