package view

import "strings"

// BeginEdit opens the inline editor on a row. Editing is reached through the
// own-message options menu, so the row must carry that menu; foreign and
// system rows refuse. Returns false without touching anything when the row
// is gone, not editable, or already being edited.
func (c *Controller) BeginEdit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok || !row.HasMenu || row.Editing {
		return false
	}
	row.Editing = true
	row.Draft = row.Body
	c.refreshLocked()
	return true
}

// CancelEdit closes the editor and restores the viewing state.
func (c *Controller) CancelEdit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok || !row.Editing {
		return
	}
	row.Editing = false
	row.Draft = ""
	c.refreshLocked()
}

// CommitEdit validates the editor contents and closes the editor. The
// trimmed text comes back with ok=true for the caller to emit; the rendered
// body stays untouched until the server echoes the edit. Whitespace-only
// text is rejected and the editor stays open.
func (c *Controller) CommitEdit(id, text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok || !row.Editing {
		return "", false
	}
	content := strings.TrimSpace(text)
	if content == "" {
		return "", false
	}
	row.Editing = false
	row.Draft = ""
	c.refreshLocked()
	return content, true
}

// SetDraft mirrors the editor's current contents so redraws don't lose them.
func (c *Controller) SetDraft(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok || !row.Editing {
		return
	}
	row.Draft = text
}

// RequestDelete gates a deletion behind an explicit confirmation. It returns
// true only when the row exists, carries a server id, and confirm agreed;
// only then should the caller emit the delete event. Declining leaves all
// state unchanged.
func (c *Controller) RequestDelete(id string, confirm func(id string) bool) bool {
	c.mu.Lock()
	_, ok := c.index[id]
	c.mu.Unlock()
	if !ok || confirm == nil {
		return false
	}
	return confirm(id)
}

// OpenMenu opens a row's options menu. Any other open menu or picker in the
// view closes first; the menu only exists on own rows with a server id.
func (c *Controller) OpenMenu(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok || !row.HasMenu {
		return false
	}
	c.closeMenusLocked()
	row.MenuOpen = true
	c.refreshLocked()
	return true
}

// OpenPicker opens a row's reaction picker under the same view-wide
// exclusivity rule as OpenMenu.
func (c *Controller) OpenPicker(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok || !row.HasPicker {
		return false
	}
	c.closeMenusLocked()
	row.PickerOpen = true
	c.refreshLocked()
	return true
}

// CloseMenus closes every open menu and picker, the click-outside behavior.
func (c *Controller) CloseMenus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeMenusLocked()
	c.refreshLocked()
}

func (c *Controller) closeMenusLocked() {
	for _, row := range c.rows {
		row.MenuOpen = false
		row.PickerOpen = false
	}
}

// CanReact reports whether a reaction toggle may be emitted for the row:
// reactions need a server-confirmed id.
func (c *Controller) CanReact(id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[id]
	return ok
}
