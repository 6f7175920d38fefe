package view

import (
	"sync"

	"webchat-client/internal/event"
)

// ReactionTag is one rendered emoji tally. Active marks the local identity
// as a member of the reaction.
type ReactionTag struct {
	Emoji  string `json:"emoji"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

// Row is the rendered form of one transcript entry. System rows carry only
// Body; message rows mirror the bubble layout: optional image first, then
// text, reactions, timestamp.
type Row struct {
	ID         string        `json:"id,omitempty"`
	Sender     string        `json:"sender,omitempty"`
	ProfileURL string        `json:"profile_url,omitempty"`
	Own        bool          `json:"own"`
	System     bool          `json:"system,omitempty"`
	Body       string        `json:"body,omitempty"`
	HasText    bool          `json:"has_text"`
	Image      string        `json:"image,omitempty"`
	Timestamp  string        `json:"timestamp,omitempty"`
	Reactions  []ReactionTag `json:"reactions,omitempty"`

	// Affordances. The options menu needs ownership and a server id; the
	// reaction picker only needs the id. PickerLeading places the picker
	// before the bubble on own rows.
	HasMenu       bool `json:"has_menu"`
	HasPicker     bool `json:"has_picker"`
	PickerLeading bool `json:"picker_leading,omitempty"`
	MenuOpen      bool `json:"menu_open,omitempty"`
	PickerOpen    bool `json:"picker_open,omitempty"`

	// Edit state. Draft holds the editor contents while Editing.
	Editing bool   `json:"editing,omitempty"`
	Draft   string `json:"draft,omitempty"`
}

// Display receives redraws from the controller. A nil display is a silent
// no-op so the controller can run headless in tests and the web bridge.
type Display interface {
	Refresh(rows []Row)
}

// Controller owns the rendered transcript for exactly one scope and applies
// every server-confirmed mutation against it. All mutations are guarded
// no-ops when the target row is gone; inbound events routinely race local
// deletes and events for other views.
type Controller struct {
	mu      sync.Mutex
	self    string
	rows    []*Row
	index   map[string]*Row
	display Display
}

// NewController builds a controller for the given local identity.
func NewController(self string, display Display) *Controller {
	return &Controller{
		self:    self,
		index:   make(map[string]*Row),
		display: display,
	}
}

// Self returns the local identity the controller renders for.
func (c *Controller) Self() string {
	return c.self
}

func (c *Controller) refreshLocked() {
	if c.display == nil {
		return
	}
	c.display.Refresh(c.snapshotLocked())
}

func (c *Controller) snapshotLocked() []Row {
	out := make([]Row, len(c.rows))
	for i, row := range c.rows {
		out[i] = *row
		out[i].Reactions = append([]ReactionTag(nil), row.Reactions...)
	}
	return out
}

// Snapshot copies the current transcript for sinks, the web bridge, and tests.
func (c *Controller) Snapshot() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Render appends one message row. Rendering an id that is already on screen
// merges into that row in place: the message fields refresh, but reactions
// (which only change via their own event) and any open editor or menu
// survive, so a re-delivered echo leaves the view as it was.
func (c *Controller) Render(msg event.Message, own bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := &Row{
		ID:            msg.ID,
		Sender:        msg.Sender,
		Own:           own,
		Body:          msg.Body,
		HasText:       msg.Body != "",
		Image:         event.ResolveImage(msg.Image),
		Timestamp:     msg.Timestamp,
		HasMenu:       own && msg.ID != "",
		HasPicker:     msg.ID != "",
		PickerLeading: own,
	}
	if !own {
		row.ProfileURL = profileURL(msg.Sender)
	}

	if msg.ID != "" {
		if old, ok := c.index[msg.ID]; ok {
			old.Sender = row.Sender
			old.ProfileURL = row.ProfileURL
			old.Own = row.Own
			old.Body = row.Body
			old.HasText = row.HasText
			old.Image = row.Image
			old.Timestamp = row.Timestamp
			old.HasMenu = row.HasMenu
			old.HasPicker = row.HasPicker
			old.PickerLeading = row.PickerLeading
			c.refreshLocked()
			return
		}
		c.index[msg.ID] = row
	}
	c.rows = append(c.rows, row)
	c.refreshLocked()
}

// RenderSystem appends a distinguished notice row with no sender, menu, or
// reactions.
func (c *Controller) RenderSystem(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, &Row{System: true, Body: text, HasText: true})
	c.refreshLocked()
}

// ApplyUpdate replaces a message's text in place after the server confirms an
// edit. Any open editor on the row closes first; a row that never had a text
// slot gains one.
func (c *Controller) ApplyUpdate(id, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok {
		return
	}
	row.Editing = false
	row.Draft = ""
	row.Body = body
	row.HasText = true
	c.refreshLocked()
}

// ApplyDelete removes the whole row after the server confirms a deletion.
func (c *Controller) ApplyDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok {
		return
	}
	delete(c.index, id)
	for i, r := range c.rows {
		if r == row {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			break
		}
	}
	c.refreshLocked()
}

// ApplyReactionSet replaces the rendered reaction list wholesale. The server
// always sends the complete current list, so prior rendered state is
// irrelevant.
func (c *Controller) ApplyReactionSet(id string, reactions []event.Reaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.index[id]
	if !ok {
		return
	}
	tags := make([]ReactionTag, 0, len(reactions))
	for _, r := range reactions {
		tag := ReactionTag{Emoji: r.Emoji, Count: r.Count}
		for _, user := range r.Users {
			if user == c.self {
				tag.Active = true
				break
			}
		}
		tags = append(tags, tag)
	}
	row.Reactions = tags
	c.refreshLocked()
}

func profileURL(name string) string {
	if name == "" {
		return ""
	}
	return "/profile/" + name
}
