package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Client -> server event names.
const (
	Join               = "join"
	JoinDM             = "join_dm"
	SendMessage        = "send_message"
	SendPrivateMessage = "send_private_message"
	UploadImage        = "upload_image"
	UploadPrivateImage = "upload_private_image"
	EditMessage        = "edit_message"
	DeleteMessage      = "delete_message"
	ReactToMessage     = "react_to_message"
)

// Server -> client event names.
const (
	ReceiveMessage        = "receive_message"
	ReceivePrivateMessage = "receive_private_message"
	MessageUpdated        = "message_updated"
	MessageDeleted        = "message_deleted"
	ReactionsUpdated      = "update_message_reactions"
	SystemMessage         = "system_message"
	RateLimited           = "rate_limited"
	CooldownStarted       = "cooldown_started"
)

const (
	inlineImagePrefix = "data:"
	uploadPathPrefix  = "/static/chat_uploads/"
)

// Frame is the wire envelope carried in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Reaction describes one emoji tally on a message as the server reports it.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// Client -> server payloads.

type JoinPayload struct {
	Username string `json:"username"`
}

type JoinDMPayload struct {
	Recipient string `json:"recipient"`
	Username  string `json:"username"`
}

type SendPayload struct {
	Username string `json:"username"`
	Msg      string `json:"msg"`
}

type SendPrivatePayload struct {
	Recipient string `json:"recipient"`
	Msg       string `json:"msg"`
}

type UploadPayload struct {
	Username string `json:"username"`
	Image    string `json:"image"`
	FileName string `json:"fileName"`
}

type UploadPrivatePayload struct {
	Recipient string `json:"recipient"`
	Username  string `json:"username"`
	Image     string `json:"image"`
	FileName  string `json:"fileName"`
}

type EditPayload struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type DeletePayload struct {
	MessageID string `json:"message_id"`
}

type ReactPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	Username  string `json:"username"`
}

// Encode wraps an outbound payload in its named frame.
func Encode(name string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return json.Marshal(Frame{Event: name, Data: data})
}

// Inbound is the closed set of server events. Dispatch with a type switch;
// every case corresponds to exactly one event name.
type Inbound interface {
	EventName() string
}

// Message is a new chat message, either for the global room or a DM thread.
type Message struct {
	ID        string
	Sender    string
	Body      string
	Image     string
	Timestamp string
	Private   bool
}

func (m Message) EventName() string {
	if m.Private {
		return ReceivePrivateMessage
	}
	return ReceiveMessage
}

// Updated confirms an edit applied by the server.
type Updated struct {
	MessageID string
	Content   string
}

func (Updated) EventName() string { return MessageUpdated }

// Deleted confirms a deletion applied by the server.
type Deleted struct {
	MessageID string
}

func (Deleted) EventName() string { return MessageDeleted }

// Reactions carries the complete current reaction list for one message.
type Reactions struct {
	MessageID string
	List      []Reaction
}

func (Reactions) EventName() string { return ReactionsUpdated }

// System is a server notice rendered as a distinguished row.
type System struct {
	Text string
}

func (System) EventName() string { return SystemMessage }

// Cooldown reports a server-enforced send cooldown. Seconds is zero when the
// server omitted the duration; the client falls back to its default then.
type Cooldown struct {
	Event   string
	Seconds int
}

func (c Cooldown) EventName() string { return c.Event }

type messagePayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Sender    string `json:"sender"`
	Msg       string `json:"msg"`
	Image     string `json:"image"`
	Timestamp string `json:"timestamp"`
}

type updatePayload struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type deletePayload struct {
	MessageID string `json:"message_id"`
}

type reactionsPayload struct {
	MessageID string     `json:"message_id"`
	Reactions []Reaction `json:"reactions"`
}

type systemPayload struct {
	Msg string `json:"msg"`
}

type cooldownPayload struct {
	Remaining *int `json:"remaining"`
	Seconds   *int `json:"seconds"`
}

// Decode parses one inbound frame into its tagged event. Unknown event names
// and malformed payloads come back as errors so callers can log and drop them.
func Decode(raw []byte) (Inbound, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	switch frame.Event {
	case ReceiveMessage, ReceivePrivateMessage:
		var p messagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}
		sender := p.Username
		if sender == "" {
			sender = p.Sender
		}
		return Message{
			ID:        p.ID,
			Sender:    sender,
			Body:      p.Msg,
			Image:     p.Image,
			Timestamp: p.Timestamp,
			Private:   frame.Event == ReceivePrivateMessage,
		}, nil
	case MessageUpdated:
		var p updatePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}
		return Updated{MessageID: p.MessageID, Content: p.Content}, nil
	case MessageDeleted:
		var p deletePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}
		return Deleted{MessageID: p.MessageID}, nil
	case ReactionsUpdated:
		var p reactionsPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}
		return Reactions{MessageID: p.MessageID, List: p.Reactions}, nil
	case SystemMessage:
		var p systemPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
		}
		return System{Text: p.Msg}, nil
	case RateLimited, CooldownStarted:
		var p cooldownPayload
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &p); err != nil {
				return nil, fmt.Errorf("decode %s: %w", frame.Event, err)
			}
		}
		seconds := 0
		if p.Remaining != nil {
			seconds = *p.Remaining
		} else if p.Seconds != nil {
			seconds = *p.Seconds
		}
		return Cooldown{Event: frame.Event, Seconds: seconds}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", frame.Event)
	}
}

// InlineImage reports whether an image reference carries the payload itself
// rather than a server-side file name.
func InlineImage(ref string) bool {
	return strings.HasPrefix(ref, inlineImagePrefix)
}

// ResolveImage turns an inbound image reference into a displayable URL:
// inline payloads pass through, file names resolve against the server's
// upload path.
func ResolveImage(ref string) string {
	if ref == "" || InlineImage(ref) {
		return ref
	}
	return uploadPathPrefix + ref
}
