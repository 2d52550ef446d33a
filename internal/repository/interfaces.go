package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListOthers returns every user except the given one, for the sidebar.
	ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	// SetOnline updates the advisory online flag and last-seen timestamp.
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListConversation returns messages in both directions between the two
	// users in ascending created_at order. before/limit implement cursor
	// pagination over the tail of the history.
	ListConversation(ctx context.Context, userA, userB uuid.UUID, before *uuid.UUID, limit int) ([]domain.Message, error)
	// MarkSeenBulk flips every unseen message from senderID to receiverID to
	// seen at seenAt, returning the ids that actually changed.
	MarkSeenBulk(ctx context.Context, senderID, receiverID uuid.UUID, seenAt time.Time) ([]uuid.UUID, error)
	MarkSeen(ctx context.Context, id uuid.UUID, seenAt time.Time) error
	// HideForViewer adds viewerID to the message's hide list. Idempotent.
	HideForViewer(ctx context.Context, id, viewerID uuid.UUID) error
	// Tombstone marks the message deleted for everyone. Idempotent.
	Tombstone(ctx context.Context, id uuid.UUID) error
	// CountUnseenBySender returns, per peer, how many of their messages to
	// receiverID are still unseen.
	CountUnseenBySender(ctx context.Context, receiverID uuid.UUID) (map[uuid.UUID]int, error)
}
