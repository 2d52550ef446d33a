package service_test

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListOthers(_ context.Context, userID uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.ID != userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetOnline(_ context.Context, userID uuid.UUID, online bool) error {
	if u, ok := r.users[userID]; ok {
		u.IsOnline = online
		u.LastSeen = time.Now()
	}
	return nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	copied := *msg
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListConversation(_ context.Context, userA, userB uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error) {
	var conv []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			conv = append(conv, *m)
		}
	}
	slices.SortFunc(conv, func(a, b domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if before != nil {
		for i, m := range conv {
			if m.ID == *before {
				conv = conv[:i]
				break
			}
		}
	}
	if len(conv) > limit {
		conv = conv[len(conv)-limit:]
	}
	return conv, nil
}

func (r *fakeMessageRepo) MarkSeenBulk(_ context.Context, senderID, receiverID uuid.UUID, seenAt time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Seen {
			m.Seen = true
			at := seenAt
			m.SeenAt = &at
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (r *fakeMessageRepo) MarkSeen(_ context.Context, id uuid.UUID, seenAt time.Time) error {
	for _, m := range r.messages {
		if m.ID == id {
			m.Seen = true
			at := seenAt
			m.SeenAt = &at
		}
	}
	return nil
}

func (r *fakeMessageRepo) HideForViewer(_ context.Context, id, viewerID uuid.UUID) error {
	for _, m := range r.messages {
		if m.ID == id {
			m.Deletion.Hide(viewerID)
		}
	}
	return nil
}

func (r *fakeMessageRepo) Tombstone(_ context.Context, id uuid.UUID) error {
	for _, m := range r.messages {
		if m.ID == id {
			m.Deletion.Tombstoned = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) CountUnseenBySender(_ context.Context, receiverID uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && !m.Seen && !m.Deletion.Tombstoned && !m.Deletion.HiddenFrom(receiverID) {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}

type seenEvent struct {
	senderID  uuid.UUID
	messageID uuid.UUID
	seenAt    time.Time
}

type seenBulkEvent struct {
	senderID   uuid.UUID
	readerID   uuid.UUID
	messageIDs []uuid.UUID
	seenAt     time.Time
}

type deletedEvent struct {
	senderID   uuid.UUID
	receiverID uuid.UUID
	messageID  uuid.UUID
}

type fakeNotifier struct {
	newMessages []*domain.Message
	seen        []seenEvent
	seenBulk    []seenBulkEvent
	deleted     []deletedEvent
}

func (n *fakeNotifier) NotifyNewMessage(msg *domain.Message) {
	n.newMessages = append(n.newMessages, msg)
}

func (n *fakeNotifier) NotifyMessageSeen(senderID, messageID uuid.UUID, seenAt time.Time) {
	n.seen = append(n.seen, seenEvent{senderID: senderID, messageID: messageID, seenAt: seenAt})
}

func (n *fakeNotifier) NotifyMessagesSeen(senderID, readerID uuid.UUID, messageIDs []uuid.UUID, seenAt time.Time) {
	n.seenBulk = append(n.seenBulk, seenBulkEvent{senderID: senderID, readerID: readerID, messageIDs: messageIDs, seenAt: seenAt})
}

func (n *fakeNotifier) NotifyMessageDeleted(senderID, receiverID, messageID uuid.UUID) {
	n.deleted = append(n.deleted, deletedEvent{senderID: senderID, receiverID: receiverID, messageID: messageID})
}
