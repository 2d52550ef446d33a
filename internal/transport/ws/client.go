package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection. It implements
// presence.Conn; Send never blocks.
type Client struct {
	conn   *websocket.Conn
	userID uuid.UUID

	send chan []byte

	closeOnce sync.Once
	done      chan struct{}

	// onClose runs once when the connection winds down, before the
	// registry unregister.
	onClose func(*Client)
}

func NewClient(conn *websocket.Conn, userID uuid.UUID, onClose func(*Client)) *Client {
	return &Client{
		conn:    conn,
		userID:  userID,
		send:    make(chan []byte, sendBufSize),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// Send queues data for delivery. When the peer cannot keep up the payload
// is dropped; a dead socket is indistinguishable from a disconnect race and
// the read pump will clean up shortly.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
	}
}

// Close shuts the client down. Safe to call from any goroutine and more
// than once; a superseded connection is closed this way by the handshake.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "")
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// ReadPump reads client events until the connection drops.
func (c *Client) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued payloads to the socket and keeps it alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event. The socket is push-oriented;
// the only client→server traffic is keepalive.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypePing:
		c.sendPong()
	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.Send(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.Send(data)
}
