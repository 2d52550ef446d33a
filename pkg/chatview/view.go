// Package chatview is the client-side view model for a one-to-one
// conversation. It merges the REST history snapshot with real-time deltas
// (new message, seen receipts, deletions) into one ordered, deduplicated
// list. Every mutation works by message id, never by position, so the two
// channels may interleave in any order.
package chatview

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
)

// Conversation is the view state for the currently open peer. Not safe for
// concurrent use; drive it from a single goroutine the way a UI event loop
// would.
type Conversation struct {
	selfID uuid.UUID
	peerID uuid.UUID

	byID  map[uuid.UUID]*domain.Message
	order []uuid.UUID // ascending (created_at, id)

	// unseen counts pushes from peers other than the open one.
	unseen map[uuid.UUID]int
}

func NewConversation(selfID, peerID uuid.UUID) *Conversation {
	return &Conversation{
		selfID: selfID,
		peerID: peerID,
		byID:   make(map[uuid.UUID]*domain.Message),
		unseen: make(map[uuid.UUID]int),
	}
}

// ApplySnapshot replaces the list wholesale with a REST fetch result.
// Unseen counters are untouched: they belong to other conversations.
func (c *Conversation) ApplySnapshot(messages []domain.Message) {
	c.byID = make(map[uuid.UUID]*domain.Message, len(messages))
	c.order = c.order[:0]
	for i := range messages {
		msg := messages[i]
		if _, ok := c.byID[msg.ID]; ok {
			continue
		}
		c.byID[msg.ID] = &msg
		c.order = append(c.order, msg.ID)
	}
	c.sortOrder()
}

// ApplyNew handles a new-message push. Messages of the open conversation
// are merged into the list; anything else bumps the sender's unseen
// counter. A duplicate of an already known id replaces the stored copy, so
// a push racing a re-fetch cannot double-insert.
func (c *Conversation) ApplyNew(msg domain.Message) {
	if !c.belongsToOpen(&msg) {
		if msg.ReceiverID == c.selfID {
			c.unseen[msg.SenderID]++
		}
		return
	}

	if _, known := c.byID[msg.ID]; known {
		c.byID[msg.ID] = &msg
		return
	}
	c.byID[msg.ID] = &msg
	c.order = append(c.order, msg.ID)
	c.sortOrder()
}

// ApplySeen patches one message's seen state. Unknown ids are a no-op: the
// message may have scrolled out of the window or belong elsewhere.
func (c *Conversation) ApplySeen(messageID uuid.UUID, seenAt time.Time) {
	msg, ok := c.byID[messageID]
	if !ok {
		return
	}
	msg.Seen = true
	msg.SeenAt = &seenAt
}

// ApplySeenBulk patches a batch of seen flags from one messages-seen event.
func (c *Conversation) ApplySeenBulk(messageIDs []uuid.UUID, seenAt time.Time) {
	for _, id := range messageIDs {
		c.ApplySeen(id, seenAt)
	}
}

// ApplyDeleted marks the message tombstoned. Unknown ids are a no-op.
func (c *Conversation) ApplyDeleted(messageID uuid.UUID) {
	msg, ok := c.byID[messageID]
	if !ok {
		return
	}
	msg.Deletion.Tombstoned = true
}

// HideForSelf applies a local delete-for-me, mirroring the server's
// per-viewer hide list.
func (c *Conversation) HideForSelf(messageID uuid.UUID) {
	msg, ok := c.byID[messageID]
	if !ok {
		return
	}
	msg.Deletion.Hide(c.selfID)
}

// Messages returns the renderable list in ascending created_at order.
// Messages hidden for this viewer are absent; tombstoned ones stay and are
// rendered as placeholders by the caller.
func (c *Conversation) Messages() []domain.Message {
	out := make([]domain.Message, 0, len(c.order))
	for _, id := range c.order {
		msg := c.byID[id]
		if !msg.VisibleTo(c.selfID) {
			continue
		}
		out = append(out, *msg)
	}
	return out
}

// Get returns a copy of the message with the given id.
func (c *Conversation) Get(messageID uuid.UUID) (domain.Message, bool) {
	msg, ok := c.byID[messageID]
	if !ok {
		return domain.Message{}, false
	}
	return *msg, true
}

// UnseenCount reports pending pushes from a peer other than the open one.
func (c *Conversation) UnseenCount(peerID uuid.UUID) int {
	return c.unseen[peerID]
}

// SetUnseen seeds a counter from the sidebar fetch.
func (c *Conversation) SetUnseen(peerID uuid.UUID, n int) {
	c.unseen[peerID] = n
}

// ClearUnseen resets a peer's counter, e.g. when switching to them.
func (c *Conversation) ClearUnseen(peerID uuid.UUID) {
	delete(c.unseen, peerID)
}

func (c *Conversation) sortOrder() {
	slices.SortFunc(c.order, func(a, b uuid.UUID) int {
		ma, mb := c.byID[a], c.byID[b]
		if ma.CreatedAt.Before(mb.CreatedAt) {
			return -1
		}
		if ma.CreatedAt.After(mb.CreatedAt) {
			return 1
		}
		return slices.Compare(a[:], b[:])
	})
}

func (c *Conversation) belongsToOpen(msg *domain.Message) bool {
	return (msg.SenderID == c.peerID && msg.ReceiverID == c.selfID) ||
		(msg.SenderID == c.selfID && msg.ReceiverID == c.peerID)
}
