package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickchat/internal/domain"
	"quickchat/internal/service"
)

func strPtr(s string) *string { return &s }

func testUser(name string) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    name + "@example.com",
		FullName: name,
	}
}

func TestSend_PersistsAndNotifies(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	userRepo := newFakeUserRepo(alice, bob)
	messageRepo := &fakeMessageRepo{}
	notifier := &fakeNotifier{}

	svc := service.NewMessageService(messageRepo, userRepo)
	svc.SetNotifier(notifier)

	msg, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{Text: strPtr("hi")})
	require.NoError(t, err)

	require.Len(t, messageRepo.messages, 1)
	stored := messageRepo.messages[0]
	assert.Equal(t, alice.ID, stored.SenderID)
	assert.Equal(t, bob.ID, stored.ReceiverID)
	assert.Equal(t, "hi", *stored.Content.Text)
	assert.False(t, stored.Seen)
	assert.Nil(t, stored.SeenAt)

	require.Len(t, notifier.newMessages, 1)
	assert.Equal(t, msg.ID, notifier.newMessages[0].ID)
}

func TestSend_OfflineReceiverStillPersists(t *testing.T) {
	// The service layer never knows about connections; a send with no
	// notifier wired must still store the message durably.
	alice := testUser("alice")
	bob := testUser("bob")
	userRepo := newFakeUserRepo(alice, bob)
	messageRepo := &fakeMessageRepo{}

	svc := service.NewMessageService(messageRepo, userRepo)

	_, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{Text: strPtr("hi")})
	require.NoError(t, err)
	require.Len(t, messageRepo.messages, 1)
}

func TestSend_EmptyContent(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	svc := service.NewMessageService(&fakeMessageRepo{}, newFakeUserRepo(alice, bob))

	_, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{})
	assert.ErrorIs(t, err, service.ErrEmptyContent)
}

func TestSend_UnknownReceiver(t *testing.T) {
	alice := testUser("alice")
	svc := service.NewMessageService(&fakeMessageRepo{}, newFakeUserRepo(alice))

	_, err := svc.Send(context.Background(), alice.ID, uuid.New(), domain.Content{Text: strPtr("hi")})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestSend_Self(t *testing.T) {
	alice := testUser("alice")
	svc := service.NewMessageService(&fakeMessageRepo{}, newFakeUserRepo(alice))

	_, err := svc.Send(context.Background(), alice.ID, alice.ID, domain.Content{Text: strPtr("hi")})
	assert.ErrorIs(t, err, service.ErrCannotMessageSelf)
}

func TestHistory_RoundTripOrdered(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	userRepo := newFakeUserRepo(alice, bob)
	messageRepo := &fakeMessageRepo{}
	svc := service.NewMessageService(messageRepo, userRepo)

	first, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{Text: strPtr("one")})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := svc.Send(context.Background(), bob.ID, alice.ID, domain.Content{Text: strPtr("two")})
	require.NoError(t, err)

	resp, err := svc.History(context.Background(), alice.ID, bob.ID, nil, 50)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, first.ID, resp.Messages[0].ID)
	assert.Equal(t, second.ID, resp.Messages[1].ID)
	assert.Equal(t, "one", *resp.Messages[0].Content.Text)
	assert.True(t, resp.Messages[0].CreatedAt.Before(resp.Messages[1].CreatedAt))
}

func TestHistory_HiddenAndTombstonedVisibility(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	userRepo := newFakeUserRepo(alice, bob)
	messageRepo := &fakeMessageRepo{}
	svc := service.NewMessageService(messageRepo, userRepo)

	hidden, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{Text: strPtr("hidden")})
	require.NoError(t, err)
	tombstoned, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{Text: strPtr("gone")})
	require.NoError(t, err)

	require.NoError(t, messageRepo.HideForViewer(context.Background(), hidden.ID, bob.ID))
	require.NoError(t, messageRepo.Tombstone(context.Background(), tombstoned.ID))

	// Bob no longer sees the hidden message, but the tombstone stays as a
	// placeholder entry.
	resp, err := svc.History(context.Background(), bob.ID, alice.ID, nil, 50)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, tombstoned.ID, resp.Messages[0].ID)
	assert.True(t, resp.Messages[0].Deletion.Tombstoned)

	// Alice still sees both.
	resp, err = svc.History(context.Background(), alice.ID, bob.ID, nil, 50)
	require.NoError(t, err)
	assert.Len(t, resp.Messages, 2)
}

func TestHistory_PaginationWindow(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	userRepo := newFakeUserRepo(alice, bob)
	messageRepo := &fakeMessageRepo{}
	svc := service.NewMessageService(messageRepo, userRepo)

	var ids []uuid.UUID
	for i := range 5 {
		sender, receiver := alice, bob
		if i%2 == 1 {
			sender, receiver = bob, alice
		}
		msg, err := svc.Send(context.Background(), sender.ID, receiver.ID, domain.Content{Text: strPtr(fmt.Sprintf("m%d", i+1))})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
		time.Sleep(time.Millisecond)
	}

	// First page is the newest window, oldest first within it.
	resp, err := svc.History(context.Background(), alice.ID, bob.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.True(t, resp.HasMore)
	assert.Equal(t, ids[3], resp.Messages[0].ID)
	assert.Equal(t, ids[4], resp.Messages[1].ID)

	// The cursor returns the page immediately preceding it.
	cursor := resp.Messages[0].ID
	resp, err = svc.History(context.Background(), alice.ID, bob.ID, &cursor, 2)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.True(t, resp.HasMore)
	assert.Equal(t, ids[1], resp.Messages[0].ID)
	assert.Equal(t, ids[2], resp.Messages[1].ID)

	// The last page is short and reports no further history.
	cursor = resp.Messages[0].ID
	resp, err = svc.History(context.Background(), alice.ID, bob.ID, &cursor, 2)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.False(t, resp.HasMore)
	assert.Equal(t, ids[0], resp.Messages[0].ID)
}

func TestHistory_UnknownCursorRejected(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	carol := testUser("carol")
	userRepo := newFakeUserRepo(alice, bob, carol)
	messageRepo := &fakeMessageRepo{}
	svc := service.NewMessageService(messageRepo, userRepo)

	_, err := svc.Send(context.Background(), alice.ID, bob.ID, domain.Content{Text: strPtr("hi")})
	require.NoError(t, err)
	other, err := svc.Send(context.Background(), alice.ID, carol.ID, domain.Content{Text: strPtr("psst")})
	require.NoError(t, err)

	unknown := uuid.New()
	_, err = svc.History(context.Background(), alice.ID, bob.ID, &unknown, 50)
	assert.ErrorIs(t, err, service.ErrInvalidCursor)

	// A cursor from a different conversation is just as invalid.
	_, err = svc.History(context.Background(), alice.ID, bob.ID, &other.ID, 50)
	assert.ErrorIs(t, err, service.ErrInvalidCursor)
}

func TestHistory_UnknownPeer(t *testing.T) {
	alice := testUser("alice")
	svc := service.NewMessageService(&fakeMessageRepo{}, newFakeUserRepo(alice))

	_, err := svc.History(context.Background(), alice.ID, uuid.New(), nil, 50)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestSidebar_UnseenCounts(t *testing.T) {
	alice := testUser("alice")
	bob := testUser("bob")
	carol := testUser("carol")
	userRepo := newFakeUserRepo(alice, bob, carol)
	messageRepo := &fakeMessageRepo{}
	svc := service.NewMessageService(messageRepo, userRepo)

	for range 3 {
		_, err := svc.Send(context.Background(), bob.ID, alice.ID, domain.Content{Text: strPtr("ping")})
		require.NoError(t, err)
	}

	entries, err := svc.Sidebar(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	counts := make(map[uuid.UUID]int)
	for _, e := range entries {
		counts[e.User.ID] = e.UnseenCount
	}
	assert.Equal(t, 3, counts[bob.ID])
	assert.Equal(t, 0, counts[carol.ID])
}
