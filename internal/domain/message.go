package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   uuid.UUID  `json:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Content    Content    `json:"content"`
	Seen       bool       `json:"seen"`
	SeenAt     *time.Time `json:"seen_at,omitempty"`
	Deletion   Deletion   `json:"deletion"`
	CreatedAt  time.Time  `json:"created_at"`
	// Joined fields for push payloads
	SenderName   string  `json:"sender_name,omitempty"`
	SenderAvatar *string `json:"sender_avatar,omitempty"`
}

// Content holds the message body. Media fields carry references to already
// uploaded objects; this service never stores blobs.
type Content struct {
	Text     *string `json:"text,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	AudioURL *string `json:"audio_url,omitempty"`
	VideoURL *string `json:"video_url,omitempty"`
}

// Empty reports whether no content field is set. A stored message always has
// at least one.
func (c Content) Empty() bool {
	return c.Text == nil && c.ImageURL == nil && c.AudioURL == nil && c.VideoURL == nil
}

// Deletion is the tagged removal state of a message. A tombstone removes the
// message for everyone; HiddenFor removes it per viewer. The tombstone masks
// the hide list, so readers never combine the two. The hide list never goes
// over the wire: who hid a message for themselves is private to them.
type Deletion struct {
	Tombstoned bool        `json:"tombstoned"`
	HiddenFor  []uuid.UUID `json:"-"`
}

// Hide adds viewer to the hide list. Set semantics: hiding twice is a no-op.
func (d *Deletion) Hide(viewer uuid.UUID) {
	if slices.Contains(d.HiddenFor, viewer) {
		return
	}
	d.HiddenFor = append(d.HiddenFor, viewer)
}

// HiddenFrom reports whether the message should be absent from viewer's list.
// Tombstoned messages are never hidden: they render as a placeholder instead.
func (d Deletion) HiddenFrom(viewer uuid.UUID) bool {
	if d.Tombstoned {
		return false
	}
	return slices.Contains(d.HiddenFor, viewer)
}

// VisibleTo reports whether the message appears in viewer's conversation,
// either with content or as a tombstone placeholder.
func (m *Message) VisibleTo(viewer uuid.UUID) bool {
	return !m.Deletion.HiddenFrom(viewer)
}

// Participant reports whether id is the sender or the receiver.
func (m *Message) Participant(id uuid.UUID) bool {
	return m.SenderID == id || m.ReceiverID == id
}
