package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
	"quickchat/internal/repository"
)

// SeenService reconciles read receipts between the store and live
// connections. Both paths are idempotent: when nothing changed, nothing is
// emitted.
type SeenService struct {
	messageRepo repository.MessageRepository
	notifier    Notifier
}

func NewSeenService(messageRepo repository.MessageRepository) *SeenService {
	return &SeenService{messageRepo: messageRepo}
}

func (s *SeenService) SetNotifier(n Notifier) {
	s.notifier = n
}

// MarkConversationSeen flips every unseen message from peer to viewer and
// emits a single batched messages-seen event to the peer. One event per
// conversation open, regardless of how many messages flipped.
func (s *SeenService) MarkConversationSeen(ctx context.Context, viewerID, peerID uuid.UUID) ([]uuid.UUID, error) {
	seenAt := time.Now().UTC()

	ids, err := s.messageRepo.MarkSeenBulk(ctx, peerID, viewerID, seenAt)
	if err != nil {
		return nil, fmt.Errorf("marking conversation seen: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if s.notifier != nil {
		s.notifier.NotifyMessagesSeen(peerID, viewerID, ids, seenAt)
	}
	return ids, nil
}

// MarkMessageSeen marks a single message seen on behalf of its receiver and
// notifies the sender. Marking an already-seen message returns the stored
// state without re-emitting.
func (s *SeenService) MarkMessageSeen(ctx context.Context, messageID, viewerID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if msg.ReceiverID != viewerID {
		return nil, ErrNotMessageReceiver
	}
	if msg.Seen {
		return msg, nil
	}

	seenAt := time.Now().UTC()
	if err := s.messageRepo.MarkSeen(ctx, messageID, seenAt); err != nil {
		return nil, fmt.Errorf("marking message seen: %w", err)
	}

	msg.Seen = true
	msg.SeenAt = &seenAt

	if s.notifier != nil {
		s.notifier.NotifyMessageSeen(msg.SenderID, msg.ID, seenAt)
	}
	return msg, nil
}
