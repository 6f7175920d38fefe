package view

import (
	"testing"

	"webchat-client/internal/event"
)

func twoRowController() *Controller {
	c := NewController("alice", nil)
	c.Render(event.Message{ID: "a", Sender: "alice", Body: "first"}, true)
	c.Render(event.Message{ID: "b", Sender: "alice", Body: "second"}, true)
	return c
}

func TestBeginEditIsSingleUse(t *testing.T) {
	c := twoRowController()
	if !c.BeginEdit("a") {
		t.Fatal("first BeginEdit should open the editor")
	}
	if c.BeginEdit("a") {
		t.Fatal("second BeginEdit without close must be rejected")
	}
	row := findRow(t, c, "a")
	if !row.Editing || row.Draft != "first" {
		t.Fatalf("editor should hold the current text: %+v", row)
	}
}

func TestBeginEditUnknownID(t *testing.T) {
	c := twoRowController()
	if c.BeginEdit("ghost") {
		t.Fatal("BeginEdit on a missing row must be a no-op")
	}
}

func TestCancelEditRestoresViewing(t *testing.T) {
	c := twoRowController()
	c.BeginEdit("a")
	c.SetDraft("a", "half typed")
	c.CancelEdit("a")
	row := findRow(t, c, "a")
	if row.Editing || row.Draft != "" {
		t.Fatalf("cancel should discard the editor: %+v", row)
	}
	if row.Body != "first" {
		t.Fatalf("cancel must not touch the rendered text: %+v", row)
	}
	if !c.BeginEdit("a") {
		t.Fatal("editor should reopen after cancel")
	}
}

func TestCommitEditRejectsWhitespace(t *testing.T) {
	c := twoRowController()
	c.BeginEdit("a")
	if _, ok := c.CommitEdit("a", "   "); ok {
		t.Fatal("whitespace-only commit must not produce an outbound edit")
	}
	row := findRow(t, c, "a")
	if !row.Editing {
		t.Fatal("rejected commit leaves the editor open")
	}
}

func TestCommitEditReturnsTrimmedContentWithoutMutating(t *testing.T) {
	c := twoRowController()
	c.BeginEdit("a")
	content, ok := c.CommitEdit("a", "  updated  ")
	if !ok || content != "updated" {
		t.Fatalf("expected trimmed content, got %q ok=%v", content, ok)
	}
	row := findRow(t, c, "a")
	if row.Editing {
		t.Fatal("commit closes the editor")
	}
	if row.Body != "first" {
		t.Fatalf("view only changes on the server echo, got %q", row.Body)
	}
}

func TestCommitEditWithoutOpenEditor(t *testing.T) {
	c := twoRowController()
	if _, ok := c.CommitEdit("a", "text"); ok {
		t.Fatal("commit without an open editor must be rejected")
	}
}

func TestRequestDeleteConfirmationGate(t *testing.T) {
	c := twoRowController()
	if c.RequestDelete("a", func(string) bool { return false }) {
		t.Fatal("declining the confirmation abandons the delete")
	}
	if len(c.Snapshot()) != 2 {
		t.Fatal("declined delete must leave state unchanged")
	}
	if !c.RequestDelete("a", func(string) bool { return true }) {
		t.Fatal("confirmed delete should be emitted")
	}
	if c.RequestDelete("ghost", func(string) bool { return true }) {
		t.Fatal("delete of a missing row must not be emitted")
	}
}

func TestMenuExclusivityAcrossView(t *testing.T) {
	c := twoRowController()
	if !c.OpenMenu("a") {
		t.Fatal("menu on own confirmed row should open")
	}
	if !c.OpenPicker("b") {
		t.Fatal("picker should open")
	}
	rowA, rowB := findRow(t, c, "a"), findRow(t, c, "b")
	if rowA.MenuOpen {
		t.Fatal("opening b's picker must close a's menu")
	}
	if !rowB.PickerOpen {
		t.Fatal("b's picker should be the only open menu")
	}

	c.CloseMenus()
	for _, row := range c.Snapshot() {
		if row.MenuOpen || row.PickerOpen {
			t.Fatalf("CloseMenus should close everything: %+v", row)
		}
	}
}

func TestOpenMenuRequiresOwnership(t *testing.T) {
	c := NewController("alice", nil)
	c.Render(event.Message{ID: "x", Sender: "bob", Body: "hi"}, false)
	if c.OpenMenu("x") {
		t.Fatal("options menu must not open on another sender's row")
	}
	if !c.OpenPicker("x") {
		t.Fatal("reaction picker opens on any confirmed row")
	}
	if c.BeginEdit("x") {
		t.Fatal("another sender's row must not be editable")
	}
}

func TestCanReact(t *testing.T) {
	c := twoRowController()
	c.Render(event.Message{Sender: "alice", Body: "pending"}, true)
	if !c.CanReact("a") {
		t.Fatal("confirmed rows accept reactions")
	}
	if c.CanReact("") || c.CanReact("ghost") {
		t.Fatal("reactions need a known server id")
	}
}
