package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// ReadInput consumes user lines until EOF or shutdown.
func (r *Runtime) ReadInput(in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Printf("stdin err: %v", err)
			return
		}
		r.ProcessLine(line)
	}
}

// ProcessLine routes one typed line. Plain lines send (or, mid-edit, commit
// the open editor); slash lines are commands; a pending delete confirmation
// consumes the next line as its yes/no answer.
func (r *Runtime) ProcessLine(line string) {
	r.lineMu.Lock()
	defer r.lineMu.Unlock()
	line = strings.TrimRight(line, "\r\n")

	if r.pendingDelete != "" {
		id := r.pendingDelete
		r.pendingDelete = ""
		answer := strings.ToLower(strings.TrimSpace(line))
		confirmed := answer == "y" || answer == "yes"
		if r.controller.RequestDelete(id, func(string) bool { return confirmed }) {
			r.conn.RequestDelete(id)
			return
		}
		r.sink.ShowNotice("delete abandoned")
		return
	}

	if r.activeEdit != "" && !strings.HasPrefix(line, "/") {
		id := r.activeEdit
		r.controller.SetDraft(id, line)
		content, ok := r.controller.CommitEdit(id, line)
		if !ok {
			// Empty edits stay open, exactly like Enter on a blank editor.
			r.sink.ShowNotice("edited text cannot be empty (use /cancel to stop editing)")
			return
		}
		r.activeEdit = ""
		r.conn.RequestEdit(id, content)
		return
	}

	if strings.HasPrefix(line, "/") {
		r.handleCommand(line)
		return
	}
	if strings.TrimSpace(line) == "" {
		return
	}
	r.SendText(line)
}

func (r *Runtime) handleCommand(line string) {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch cmd {
	case "/edit":
		id := arg(1)
		if id == "" {
			r.sink.ShowNotice("usage: /edit <message-id>")
			return
		}
		if !r.controller.BeginEdit(id) {
			r.sink.ShowNotice("nothing to edit there")
			return
		}
		r.activeEdit = id
		r.sink.ShowNotice(fmt.Sprintf("editing #%s, type the new text (/cancel to stop)", id))
	case "/cancel":
		if r.activeEdit == "" {
			return
		}
		r.controller.CancelEdit(r.activeEdit)
		r.activeEdit = ""
	case "/delete":
		id := arg(1)
		if id == "" {
			r.sink.ShowNotice("usage: /delete <message-id>")
			return
		}
		r.pendingDelete = id
		r.sink.ShowNotice(fmt.Sprintf("delete message #%s? (y/n)", id))
	case "/react":
		id, emoji := arg(1), arg(2)
		if id == "" || emoji == "" {
			r.sink.ShowNotice("usage: /react <message-id> <emoji>")
			return
		}
		if !r.controller.CanReact(id) {
			r.sink.ShowNotice("that message cannot be reacted to")
			return
		}
		r.controller.CloseMenus()
		r.conn.ToggleReaction(id, emoji)
	case "/menu":
		if !r.controller.OpenMenu(arg(1)) {
			r.sink.ShowNotice("no menu on that message")
		}
	case "/pick":
		if !r.controller.OpenPicker(arg(1)) {
			r.sink.ShowNotice("no reactions on that message")
		}
	case "/close":
		r.controller.CloseMenus()
	case "/image":
		path := arg(1)
		if path == "" {
			r.sink.ShowNotice("usage: /image <path>")
			return
		}
		if err := r.SendImageFile(path); err != nil {
			r.sink.ShowNotice(fmt.Sprintf("image send failed: %v", err))
		}
	case "/history":
		r.sink.Refresh(r.controller.Snapshot())
	case "/stats":
		r.sink.ShowNotice(r.metrics.Snapshot().String())
	case "/quit":
		r.sink.ShowNotice("bye")
		r.quit()
	default:
		r.sink.ShowNotice("commands: /edit /cancel /delete /react /menu /pick /close /image /history /stats /quit")
	}
}

func (r *Runtime) quit() {
	if r.cancel != nil {
		r.cancel()
	}
}
