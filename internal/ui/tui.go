package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"webchat-client/internal/view"
)

// TUIDisplay renders the transcript with tview and feeds typed lines back
// through the send callback. It repaints the whole transcript on Refresh, so
// edits, deletions, and reaction changes show up in place.
type TUIDisplay struct {
	app        *tview.Application
	transcript *tview.TextView
	notices    *tview.TextView
	input      *tview.InputField
	send       func(string)
	lines      chan string
	once       sync.Once
}

func NewTUIDisplay(title string, send func(string)) *TUIDisplay {
	transcript := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(false).
		SetScrollable(true)
	transcript.SetBorder(true).SetTitle(title)

	notices := tview.NewTextView().SetDynamicColors(true)
	notices.SetBorder(true).SetTitle("Notices")

	input := tview.NewInputField().
		SetLabel("> ").
		SetFieldTextColor(tcell.ColorWhite)

	td := &TUIDisplay{
		app:        tview.NewApplication(),
		transcript: transcript,
		notices:    notices,
		input:      input,
		send:       send,
		lines:      make(chan string, 64),
	}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := strings.TrimSpace(input.GetText())
			if text != "" {
				td.lines <- text
			}
			input.SetText("")
		}
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(transcript, 0, 5, false).
		AddItem(notices, 6, 1, false).
		AddItem(input, 3, 1, true)

	td.app.SetRoot(layout, true).EnableMouse(true)
	return td
}

func (t *TUIDisplay) Run(ctx context.Context) error {
	go t.forwardLines(ctx)
	go func() {
		<-ctx.Done()
		t.once.Do(func() {
			t.app.Stop()
		})
	}()
	return t.app.Run()
}

// forwardLines drains entered lines to the send callback one at a time, off
// the draw loop and in entry order, so a confirmation answer can never
// overtake the command that prompted for it.
func (t *TUIDisplay) forwardLines(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-t.lines:
			t.send(line)
		}
	}
}

func (t *TUIDisplay) Refresh(rows []view.Row) {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(formatTUIRow(row))
		b.WriteByte('\n')
	}
	content := b.String()
	t.app.QueueUpdateDraw(func() {
		t.transcript.SetText(content)
		t.transcript.ScrollToEnd()
	})
}

func (t *TUIDisplay) ShowNotice(text string) {
	line := fmt.Sprintf("[orange]** %s[-]\n", tview.Escape(text))
	t.app.QueueUpdateDraw(func() {
		fmt.Fprint(t.notices, line)
		t.notices.ScrollToEnd()
	})
}

func (t *TUIDisplay) ShowCooldown(remaining int) {
	t.app.QueueUpdateDraw(func() {
		if remaining > 0 {
			t.input.SetLabel(fmt.Sprintf("wait %ds ", remaining))
			t.input.SetDisabled(true)
			return
		}
		t.input.SetLabel("> ")
		t.input.SetDisabled(false)
	})
}

func formatTUIRow(row view.Row) string {
	if row.System {
		return fmt.Sprintf("[green]>>> %s[-]", tview.Escape(row.Body))
	}
	nameColor := "lightgreen"
	if row.Own {
		nameColor = "yellow"
	}
	var b strings.Builder
	if row.Timestamp != "" {
		fmt.Fprintf(&b, "[gray][%s][-] ", tview.Escape(row.Timestamp))
	}
	fmt.Fprintf(&b, "[%s]%s[-]", nameColor, tview.Escape(row.Sender))
	if row.ID != "" {
		fmt.Fprintf(&b, " [gray]#%s[-]", tview.Escape(row.ID))
	}
	b.WriteString(": ")
	if row.Image != "" {
		fmt.Fprintf(&b, "[blue](image: %s)[-] ", tview.Escape(row.Image))
	}
	if row.Editing {
		fmt.Fprintf(&b, "[orange](editing) %s[-]", tview.Escape(row.Draft))
	} else if row.HasText {
		b.WriteString(tview.Escape(row.Body))
	}
	if tally := formatReactions(row.Reactions); tally != "" {
		fmt.Fprintf(&b, " [orange]%s[-]", tally)
	}
	if row.MenuOpen {
		b.WriteString(" [gray](menu: edit | delete)[-]")
	}
	if row.PickerOpen {
		b.WriteString(" [gray](react: 👍 | 😡)[-]")
	}
	return b.String()
}
