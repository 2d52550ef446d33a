package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quickchat/internal/repository"
)

// DeletionService applies the two deletion modes. Rows are never removed;
// deletion is always a state change on the stored message.
type DeletionService struct {
	messageRepo repository.MessageRepository
	notifier    Notifier
}

func NewDeletionService(messageRepo repository.MessageRepository) *DeletionService {
	return &DeletionService{messageRepo: messageRepo}
}

func (s *DeletionService) SetNotifier(n Notifier) {
	s.notifier = n
}

// DeleteForMe hides the message from the requesting participant only.
// Purely local state: no event is emitted, nobody else's view changes.
func (s *DeletionService) DeleteForMe(ctx context.Context, messageID, viewerID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if !msg.Participant(viewerID) {
		return ErrNotParticipant
	}

	if err := s.messageRepo.HideForViewer(ctx, messageID, viewerID); err != nil {
		return fmt.Errorf("hiding message: %w", err)
	}
	return nil
}

// DeleteForEveryone tombstones the message and notifies both parties, the
// sender's other sessions included, so the content disappears everywhere.
func (s *DeletionService) DeleteForEveryone(ctx context.Context, messageID, requesterID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != requesterID {
		return ErrNotMessageSender
	}

	if err := s.messageRepo.Tombstone(ctx, messageID); err != nil {
		return fmt.Errorf("tombstoning message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyMessageDeleted(msg.SenderID, msg.ReceiverID, msg.ID)
	}
	return nil
}
