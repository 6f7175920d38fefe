package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"webchat-client/internal/cooldown"
	"webchat-client/internal/event"
	"webchat-client/internal/storage"
	"webchat-client/internal/ui"
	"webchat-client/internal/view"
)

const maxImageBytes = 5 << 20

// sender is the outbound half of the realtime channel the runtime needs.
// client.Client satisfies it; tests substitute a recorder.
type sender interface {
	SendText(msg string)
	SendImage(image, fileName string)
	RequestEdit(messageID, content string)
	RequestDelete(messageID string)
	ToggleReaction(messageID, emoji string)
}

// Runtime wires inbound events to view mutations and user gestures to
// outbound events. It never mutates the view on its own behalf: everything
// rendered was confirmed by the server first, except local system notices.
type Runtime struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        *Config
	controller *view.Controller
	cool       *cooldown.Mirror
	sink       ui.Sink
	conn       sender
	transcript *storage.Transcript
	archive    *storage.Archiver
	metrics    *metrics

	// pending modal input for the line-based interface. lineMu serializes
	// line handling; stdin, the TUI, and the bridge feed lines from their
	// own goroutines.
	lineMu        sync.Mutex
	activeEdit    string
	pendingDelete string
}

// HandleEvent dispatches one decoded inbound event. Implements
// client.Handler.
func (r *Runtime) HandleEvent(ev event.Inbound) {
	switch e := ev.(type) {
	case event.Message:
		r.handleMessage(e)
	case event.Updated:
		r.metrics.IncEdit()
		r.controller.ApplyUpdate(e.MessageID, e.Content)
		if err := r.transcript.Update(r.cfg.Scope(), e.MessageID, e.Content); err != nil {
			log.Printf("transcript update: %v", err)
		}
	case event.Deleted:
		r.metrics.IncDelete()
		r.controller.ApplyDelete(e.MessageID)
		if err := r.transcript.Delete(r.cfg.Scope(), e.MessageID); err != nil {
			log.Printf("transcript delete: %v", err)
		}
	case event.Reactions:
		r.metrics.IncReaction()
		r.controller.ApplyReactionSet(e.MessageID, e.List)
	case event.System:
		r.controller.RenderSystem(e.Text)
	case event.Cooldown:
		r.metrics.IncCooldown()
		r.cool.Start(time.Duration(e.Seconds) * time.Second)
		r.controller.RenderSystem(cooldownNotice(e))
	}
}

func (r *Runtime) handleMessage(msg event.Message) {
	if msg.Sender == "" {
		msg.Sender = "Anonymous"
	}
	if r.cfg.Recipient == "" {
		// DM traffic never renders into the global room.
		if msg.Private {
			return
		}
	} else {
		// DM frames for other threads do not belong to this view.
		if msg.Sender != r.cfg.Recipient && msg.Sender != r.controller.Self() {
			return
		}
	}
	own := msg.Sender == r.controller.Self()
	r.metrics.IncReceived()
	r.controller.Render(msg, own)

	rec := storage.Record{Message: msg, Own: own}
	if err := r.transcript.Append(r.cfg.Scope(), rec); err != nil {
		log.Printf("transcript append: %v", err)
	}
	if r.archive != nil && msg.ID != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.archive.Store(ctx, r.cfg.Scope(), rec); err != nil {
				log.Printf("archive store: %v", err)
			}
		}()
	}
}

func cooldownNotice(e event.Cooldown) string {
	seconds := e.Seconds
	if seconds <= 0 {
		seconds = int(cooldown.DefaultDuration / time.Second)
	}
	if e.Event == event.RateLimited {
		return fmt.Sprintf("you are sending too fast, wait %ds", seconds)
	}
	return fmt.Sprintf("cooldown active for %ds", seconds)
}

// SendText emits a chat message unless the cooldown mirror blocks it or the
// text is empty. Neither rejection emits anything.
func (r *Runtime) SendText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if r.cool.IsBlocked() {
		r.sink.ShowNotice(fmt.Sprintf("hold on, %ds before you can send again", r.cool.Remaining()))
		return
	}
	r.metrics.IncSent()
	r.conn.SendText(text)
}

// SendImageFile reads a local file and emits it inline for the server to
// persist. The same cooldown gate as text sends applies.
func (r *Runtime) SendImageFile(path string) error {
	if r.cool.IsBlocked() {
		r.sink.ShowNotice(fmt.Sprintf("hold on, %ds before you can send again", r.cool.Remaining()))
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) > maxImageBytes {
		return fmt.Errorf("%s exceeds the %dMB image limit", filepath.Base(path), maxImageBytes>>20)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	payload := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	r.metrics.IncSent()
	r.conn.SendImage(payload, filepath.Base(path))
	return nil
}

// Controller exposes the view for the web bridge and tests.
func (r *Runtime) Controller() *view.Controller {
	return r.controller
}

// Cooldown exposes the mirror for the web bridge.
func (r *Runtime) Cooldown() *cooldown.Mirror {
	return r.cool
}
