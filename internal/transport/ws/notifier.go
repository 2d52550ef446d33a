package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
	"quickchat/internal/presence"
)

// RegistryNotifier implements service.Notifier by looking up live
// connections in the presence registry. Users without a connection are
// skipped; the store remains the source of truth.
type RegistryNotifier struct {
	registry *presence.Registry
}

func NewRegistryNotifier(registry *presence.Registry) *RegistryNotifier {
	return &RegistryNotifier{registry: registry}
}

func (n *RegistryNotifier) NotifyNewMessage(msg *domain.Message) {
	// The sender gets the push too, for its other open tabs.
	n.push(EventTypeNewMessage, NewMessagePayload{Message: *msg}, msg.ReceiverID, msg.SenderID)
}

func (n *RegistryNotifier) NotifyMessageSeen(senderID, messageID uuid.UUID, seenAt time.Time) {
	n.push(EventTypeMessageSeen, MessageSeenPayload{MessageID: messageID, SeenAt: seenAt}, senderID)
}

func (n *RegistryNotifier) NotifyMessagesSeen(senderID, readerID uuid.UUID, messageIDs []uuid.UUID, seenAt time.Time) {
	n.push(EventTypeMessagesSeen, MessagesSeenPayload{
		MessageIDs: messageIDs,
		ReaderID:   readerID,
		SeenAt:     seenAt,
	}, senderID)
}

func (n *RegistryNotifier) NotifyMessageDeleted(senderID, receiverID, messageID uuid.UUID) {
	n.push(EventTypeMessageDeleted, MessageDeletedPayload{MessageID: messageID}, senderID, receiverID)
}

func (n *RegistryNotifier) push(eventType string, payload any, userIDs ...uuid.UUID) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}

	for _, id := range userIDs {
		if conn, ok := n.registry.Lookup(id); ok {
			conn.Send(data)
		}
	}
}
