package service

import (
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
)

// Notifier pushes real-time events to live connections. Delivery is
// fire-and-forget: implementations silently drop events for users without a
// live connection, the REST history fetch is the durability backstop.
type Notifier interface {
	// NotifyNewMessage pushes the message to both the receiver and the
	// sender (the sender's other sessions render it too).
	NotifyNewMessage(msg *domain.Message)
	// NotifyMessageSeen tells the sender one message was seen.
	NotifyMessageSeen(senderID, messageID uuid.UUID, seenAt time.Time)
	// NotifyMessagesSeen tells the sender a batch of messages was seen in a
	// single event.
	NotifyMessagesSeen(senderID, readerID uuid.UUID, messageIDs []uuid.UUID, seenAt time.Time)
	// NotifyMessageDeleted tells both parties the message was deleted for
	// everyone.
	NotifyMessageDeleted(senderID, receiverID, messageID uuid.UUID)
}
