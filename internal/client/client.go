package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"webchat-client/internal/event"
)

// Handler consumes decoded inbound events. The client holds no view state;
// everything it reads is handed straight here.
type Handler interface {
	HandleEvent(event.Inbound)
}

// Client is the realtime channel adapter: it joins one scope on connect,
// decodes inbound frames into tagged events, and writes outbound actions
// fire-and-forget. There is no request/response correlation, no retry, and
// no timeout; the server's echo is the only confirmation an action gets.
type Client struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	handler Handler

	username  string
	recipient string
}

// Dial connects to the chat service and announces the scope: join for the
// global room, join_dm when recipient is set. token, when present, rides
// along as a bearer header.
func Dial(ctx context.Context, serverURL, username, recipient, token string, handler Handler) (*Client, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, serverURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", serverURL, err)
	}

	c := &Client{
		conn:      conn,
		handler:   handler,
		username:  username,
		recipient: recipient,
	}
	if recipient != "" {
		c.emit(event.JoinDM, event.JoinDMPayload{Recipient: recipient, Username: username})
	} else {
		c.emit(event.Join, event.JoinPayload{Username: username})
	}
	return c, nil
}

// Run reads frames until the context is cancelled or the connection drops.
// Malformed or unknown frames are logged and skipped, never fatal.
func (c *Client) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !isClosedErr(err) {
				log.Printf("channel read: %v", err)
			}
			return
		}
		ev, err := event.Decode(raw)
		if err != nil {
			log.Printf("drop inbound frame: %v", err)
			continue
		}
		c.handler.HandleEvent(ev)
	}
}

// Close tears the channel down.
func (c *Client) Close() {
	deadline := time.Now().Add(time.Second)
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	c.writeMu.Unlock()
	_ = c.conn.Close()
}

// SendText emits the scope-appropriate text message event.
func (c *Client) SendText(msg string) {
	if c.recipient != "" {
		c.emit(event.SendPrivateMessage, event.SendPrivatePayload{Recipient: c.recipient, Msg: msg})
		return
	}
	c.emit(event.SendMessage, event.SendPayload{Username: c.username, Msg: msg})
}

// SendImage emits an inline-encoded image for the server to persist.
func (c *Client) SendImage(image, fileName string) {
	if c.recipient != "" {
		c.emit(event.UploadPrivateImage, event.UploadPrivatePayload{
			Recipient: c.recipient, Username: c.username, Image: image, FileName: fileName,
		})
		return
	}
	c.emit(event.UploadImage, event.UploadPayload{Username: c.username, Image: image, FileName: fileName})
}

// RequestEdit asks the server to replace a message's content.
func (c *Client) RequestEdit(messageID, content string) {
	c.emit(event.EditMessage, event.EditPayload{MessageID: messageID, Content: content})
}

// RequestDelete asks the server to remove a message.
func (c *Client) RequestDelete(messageID string) {
	c.emit(event.DeleteMessage, event.DeletePayload{MessageID: messageID})
}

// ToggleReaction flips the local identity's reaction on a message.
func (c *Client) ToggleReaction(messageID, emoji string) {
	c.emit(event.ReactToMessage, event.ReactPayload{
		MessageID: messageID, Emoji: emoji, Username: c.username,
	})
}

func (c *Client) emit(name string, payload interface{}) {
	raw, err := event.Encode(name, payload)
	if err != nil {
		log.Printf("encode %s: %v", name, err)
		return
	}
	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, raw)
	c.writeMu.Unlock()
	if err != nil {
		log.Printf("emit %s: %v", name, err)
	}
}

func isClosedErr(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
