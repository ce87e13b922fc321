package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sanojDD/Balentine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory MessageStore with failure injection
type fakeStore struct {
	mu       sync.Mutex
	messages []models.Message
	nextID   uint
	failNext bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext {
		s.failNext = false
		return nil, errors.New("disk on fire")
	}

	msg := models.Message{
		ID:         s.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	s.nextID++
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s *fakeStore) History(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.messages {
		if m.ID == id {
			msg := m
			return &msg, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) DeleteByID(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func messageEvents(events []Event) []*models.Message {
	var msgs []*models.Message
	for _, e := range events {
		if e.Type == EventMessage {
			msgs = append(msgs, e.Payload.(*models.Message))
		}
	}
	return msgs
}

func TestRouterDeliversAndEchoes(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	alice := newFakeSession(1, "a1")
	bob := newFakeSession(2, "b1")
	hub.Register(alice)
	hub.Register(bob)

	msg, err := router.Send(context.Background(), 1, 2, "hey bob")
	require.NoError(t, err)
	assert.Equal(t, uint(1), msg.ID)

	bobMsgs := messageEvents(bob.Events())
	require.Len(t, bobMsgs, 1)
	assert.Equal(t, "hey bob", bobMsgs[0].Content)
	assert.Equal(t, uint(1), bobMsgs[0].SenderID)

	aliceMsgs := messageEvents(alice.Events())
	require.Len(t, aliceMsgs, 1, "sender always gets an echo")
	assert.Equal(t, msg.ID, aliceMsgs[0].ID)
}

func TestRouterOfflineReceiverStillSucceeds(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	alice := newFakeSession(1, "a1")
	hub.Register(alice)

	msg, err := router.Send(context.Background(), 1, 2, "you there?")
	require.NoError(t, err)
	assert.NotNil(t, msg)
	assert.Equal(t, 1, store.count(), "message persists even when receiver is offline")

	aliceMsgs := messageEvents(alice.Events())
	require.Len(t, aliceMsgs, 1, "echo is delivered regardless of receiver presence")
}

func TestRouterRejectsEmptyContent(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := router.Send(context.Background(), 1, 2, content)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}
	assert.Equal(t, 0, store.count(), "rejected messages never reach the store")
}

func TestRouterStoreFailureDeliversNothing(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	alice := newFakeSession(1, "a1")
	bob := newFakeSession(2, "b1")
	hub.Register(alice)
	hub.Register(bob)

	store.failNext = true
	_, err := router.Send(context.Background(), 1, 2, "doomed")
	assert.ErrorIs(t, err, ErrStoreFailed)

	assert.Empty(t, messageEvents(alice.Events()), "no echo on persist failure")
	assert.Empty(t, messageEvents(bob.Events()), "no delivery on persist failure")
}

func TestRouterSelfMessageEchoesOnce(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	alice := newFakeSession(1, "a1")
	hub.Register(alice)

	_, err := router.Send(context.Background(), 1, 1, "note to self")
	require.NoError(t, err)

	msgs := messageEvents(alice.Events())
	assert.Len(t, msgs, 1, "self-addressed message arrives exactly once")
}

func TestRouterStaleSessionTreatedAsOffline(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	alice := newFakeSession(1, "a1")
	bobOld := newFakeSession(2, "b1")
	bobNew := newFakeSession(2, "b2")

	hub.Register(alice)
	hub.Register(bobOld)
	hub.Register(bobNew)

	_, err := router.Send(context.Background(), 1, 2, "to the live one")
	require.NoError(t, err)

	assert.Empty(t, messageEvents(bobOld.Events()), "superseded session gets nothing")
	assert.Len(t, messageEvents(bobNew.Events()), 1)
}

func TestRouterMessageIDsAreMonotonic(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	var lastID uint
	for i := 0; i < 5; i++ {
		msg, err := router.Send(context.Background(), 1, 2, "ping")
		require.NoError(t, err)
		assert.Greater(t, msg.ID, lastID)
		lastID = msg.ID
	}
}

func TestRouterNotifyDeleted(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	bob := newFakeSession(2, "b1")
	hub.Register(bob)

	router.NotifyDeleted(2, 7)

	events := bob.Events()
	var found bool
	for _, e := range events {
		if e.Type == EventMessageDeleted {
			assert.Equal(t, MessageDeletedPayload{ID: 7}, e.Payload)
			found = true
		}
	}
	assert.True(t, found, "receiver should get a messageDeleted event")

	// Offline receiver is a silent no-op
	router.NotifyDeleted(99, 8)
}

func TestTwoUserConversation(t *testing.T) {
	hub := NewHub()
	store := newFakeStore()
	router := NewRouter(hub, store)

	alice := newFakeSession(1, "a1")
	hub.Register(alice)

	// Bob is offline for the first message
	_, err := router.Send(context.Background(), 1, 2, "first")
	require.NoError(t, err)

	bob := newFakeSession(2, "b1")
	hub.Register(bob)

	_, err = router.Send(context.Background(), 2, 1, "second")
	require.NoError(t, err)
	_, err = router.Send(context.Background(), 1, 2, "third")
	require.NoError(t, err)

	// History holds all three in send order
	history, err := store.History(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)

	// Bob only saw what arrived while he was connected
	bobMsgs := messageEvents(bob.Events())
	require.Len(t, bobMsgs, 2)
	assert.Equal(t, "second", bobMsgs[0].Content)
	assert.Equal(t, "third", bobMsgs[1].Content)
}
