package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
)

// Event types - Client → Server
const (
	EventTypePing = "ping"
)

// Event types - Server → Client
const (
	EventTypeOnlineUsers    = "online-users"
	EventTypeNewMessage     = "new-message"
	EventTypeMessageSeen    = "message-seen"
	EventTypeMessagesSeen   = "messages-seen"
	EventTypeMessageDeleted = "message-deleted"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Server → Client payloads ---

type OnlineUsersPayload struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

type NewMessagePayload struct {
	domain.Message
}

type MessageSeenPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	SeenAt    time.Time `json:"seen_at"`
}

type MessagesSeenPayload struct {
	MessageIDs []uuid.UUID `json:"message_ids"`
	ReaderID   uuid.UUID   `json:"reader_id"`
	SeenAt     time.Time   `json:"seen_at"`
}

type MessageDeletedPayload struct {
	MessageID uuid.UUID `json:"message_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
