package ui

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"webchat-client/internal/view"
)

func TestCLIDisplayPrintsNewRows(t *testing.T) {
	var buf bytes.Buffer
	d := NewCLIDisplay(&buf, false)

	d.Refresh([]view.Row{
		{ID: "42", Sender: "alice", Body: "hello", HasText: true, Timestamp: "12:00"},
	})
	out := buf.String()
	if !strings.Contains(out, "[12:00] alice #42: hello") {
		t.Fatalf("unexpected line: %q", out)
	}

	buf.Reset()
	d.Refresh([]view.Row{
		{ID: "42", Sender: "alice", Body: "hello", HasText: true, Timestamp: "12:00"},
		{ID: "43", Sender: "bob", Body: "hi", HasText: true, Image: "/static/chat_uploads/cat.png"},
	})
	out = buf.String()
	if strings.Contains(out, "#42") {
		t.Fatalf("old rows should not reprint: %q", out)
	}
	if !strings.Contains(out, "(image: /static/chat_uploads/cat.png) hi") {
		t.Fatalf("image should precede text: %q", out)
	}
}

func TestCLIDisplayNoticesEditsAndDeletes(t *testing.T) {
	var buf bytes.Buffer
	d := NewCLIDisplay(&buf, false)

	rows := []view.Row{{ID: "42", Sender: "alice", Body: "hello", HasText: true}}
	d.Refresh(rows)
	buf.Reset()

	rows[0].Body = "hello there"
	d.Refresh(rows)
	if !strings.Contains(buf.String(), "alice edited a message: hello there") {
		t.Fatalf("expected edit notice, got %q", buf.String())
	}

	buf.Reset()
	d.Refresh(nil)
	if !strings.Contains(buf.String(), "a message was deleted") {
		t.Fatalf("expected delete notice, got %q", buf.String())
	}
}

func TestCLIDisplayReactionNotice(t *testing.T) {
	var buf bytes.Buffer
	d := NewCLIDisplay(&buf, false)

	rows := []view.Row{{ID: "42", Sender: "bob", Body: "hi", HasText: true}}
	d.Refresh(rows)
	buf.Reset()

	rows[0].Reactions = []view.ReactionTag{{Emoji: "👍", Count: 2, Active: true}}
	d.Refresh(rows)
	if !strings.Contains(buf.String(), "👍 2*") {
		t.Fatalf("expected reaction tally with active marker, got %q", buf.String())
	}
}

func TestCLIDisplaySystemAndCooldown(t *testing.T) {
	var buf bytes.Buffer
	d := NewCLIDisplay(&buf, false)

	d.Refresh([]view.Row{{System: true, Body: "bob joined", HasText: true}})
	if !strings.Contains(buf.String(), ">>> bob joined") {
		t.Fatalf("expected system row, got %q", buf.String())
	}

	buf.Reset()
	d.ShowCooldown(7)
	d.ShowCooldown(0)
	out := buf.String()
	if !strings.Contains(out, "wait 7s") || !strings.Contains(out, "send again") {
		t.Fatalf("expected cooldown lines, got %q", out)
	}
}

func TestTUIForwardsLinesInEntryOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	td := NewTUIDisplay("t", func(line string) {
		mu.Lock()
		got = append(got, line)
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go td.forwardLines(ctx)

	for _, line := range []string{"/delete m1", "y", "hello"} {
		td.lines <- line
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lines never reached the send callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "/delete m1" || got[1] != "y" || got[2] != "hello" {
		t.Fatalf("lines arrived out of order: %v", got)
	}
}

func TestFormatTUIRowMarksState(t *testing.T) {
	row := view.Row{
		ID: "42", Sender: "alice", Own: true, Body: "hello", HasText: true,
		Reactions: []view.ReactionTag{{Emoji: "👍", Count: 1}},
		MenuOpen:  true,
	}
	out := formatTUIRow(row)
	if !strings.Contains(out, "alice") || !strings.Contains(out, "hello") {
		t.Fatalf("row content missing: %q", out)
	}
	if !strings.Contains(out, "menu: edit | delete") {
		t.Fatalf("open menu marker missing: %q", out)
	}

	row.MenuOpen = false
	row.Editing = true
	row.Draft = "hel"
	out = formatTUIRow(row)
	if !strings.Contains(out, "(editing) hel") {
		t.Fatalf("editing marker missing: %q", out)
	}
}
