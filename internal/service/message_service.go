package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
	"quickchat/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrEmptyContent       = errors.New("message needs text or a media reference")
	ErrCannotMessageSelf  = errors.New("cannot message yourself")
	ErrNotMessageReceiver = errors.New("only the receiver can mark a message seen")
	ErrNotMessageSender   = errors.New("only the sender can delete for everyone")
	ErrNotParticipant     = errors.New("not a participant of this message")
	ErrInvalidCursor      = errors.New("unknown pagination cursor")
)

// MessageService persists messages and routes them to live connections.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send validates and persists a message, then pushes it to any live
// connections of the two parties. Push delivery is best-effort; the stored
// row is what the receiver's next history fetch returns.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content domain.Content) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, ErrCannotMessageSelf
	}
	if content.Empty() {
		return nil, ErrEmptyContent
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Re-read with sender identity joined in for the push payload.
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

type HistoryResponse struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

// History returns the conversation between viewer and peer in ascending
// created_at order, with messages the viewer has individually hidden
// filtered out. Tombstoned messages stay in the list; clients render them
// as placeholders.
func (s *MessageService) History(ctx context.Context, viewerID, peerID uuid.UUID, before *uuid.UUID, limit int) (*HistoryResponse, error) {
	peer, err := s.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if peer == nil {
		return nil, ErrUserNotFound
	}

	// A cursor must point at a message of this conversation. Without the
	// check an unknown id would silently read as an empty page.
	if before != nil {
		cur, err := s.messageRepo.GetByID(ctx, *before)
		if err != nil {
			return nil, err
		}
		if cur == nil || !cur.Participant(viewerID) || !cur.Participant(peerID) {
			return nil, ErrInvalidCursor
		}
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	messages, err := s.messageRepo.ListConversation(ctx, viewerID, peerID, before, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[len(messages)-limit:]
	}

	visible := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.VisibleTo(viewerID) {
			visible = append(visible, msg)
		}
	}

	return &HistoryResponse{Messages: visible, HasMore: hasMore}, nil
}

type SidebarEntry struct {
	User        domain.User `json:"user"`
	UnseenCount int         `json:"unseen_count"`
}

// Sidebar lists every other user together with how many of their messages
// the viewer has not seen yet.
func (s *MessageService) Sidebar(ctx context.Context, viewerID uuid.UUID) ([]SidebarEntry, error) {
	users, err := s.userRepo.ListOthers(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	counts, err := s.messageRepo.CountUnseenBySender(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	entries := make([]SidebarEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, SidebarEntry{User: u, UnseenCount: counts[u.ID]})
	}
	return entries, nil
}
