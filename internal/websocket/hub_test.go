package websocket

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// Initialize logger for tests
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

// fakeSession is an in-memory Session capturing pushed events
type fakeSession struct {
	userID    uint
	sessionID string

	mu     sync.Mutex
	events []Event
	full   bool
	closed bool
}

func newFakeSession(userID uint, sessionID string) *fakeSession {
	return &fakeSession{userID: userID, sessionID: sessionID}
}

func (f *fakeSession) UserID() uint      { return f.userID }
func (f *fakeSession) SessionID() string { return f.sessionID }

func (f *fakeSession) Push(event Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSession) Events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeSession) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSession) statusEvents() []UserStatusPayload {
	var statuses []UserStatusPayload
	for _, e := range f.Events() {
		if e.Type == EventUserStatus {
			statuses = append(statuses, e.Payload.(UserStatusPayload))
		}
	}
	return statuses
}

func TestHubRegisterAndLookup(t *testing.T) {
	hub := NewHub()
	s := newFakeSession(1, "s1")

	hub.Register(s)

	got, ok := hub.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "s1", got.SessionID())
	assert.True(t, hub.IsOnline(1))
}

func TestHubUnregisterRemovesUser(t *testing.T) {
	hub := NewHub()
	hub.Register(newFakeSession(1, "s1"))

	hub.Unregister(1, "s1")

	assert.False(t, hub.IsOnline(1))
	assert.Empty(t, hub.Snapshot())
}

func TestHubReconnectReplacesSession(t *testing.T) {
	hub := NewHub()
	old := newFakeSession(1, "s1")
	fresh := newFakeSession(1, "s2")

	hub.Register(old)
	hub.Register(fresh)

	got, ok := hub.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "s2", got.SessionID())
	assert.True(t, old.IsClosed(), "superseded session should be closed")
	assert.Len(t, hub.Snapshot(), 1, "one user should have exactly one entry")
}

func TestHubStaleDisconnectIsIgnored(t *testing.T) {
	hub := NewHub()
	old := newFakeSession(1, "s1")
	fresh := newFakeSession(1, "s2")

	hub.Register(old)
	hub.Register(fresh)

	// The old connection's cleanup fires after the reconnect
	hub.Unregister(1, "s1")

	got, ok := hub.Lookup(1)
	assert.True(t, ok, "newer session must survive the stale disconnect")
	assert.Equal(t, "s2", got.SessionID())
}

func TestHubUnregisterUnknownUserIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Unregister(42, "nope")
	assert.Empty(t, hub.Snapshot())
}

func TestHubRegisterBroadcastsOnline(t *testing.T) {
	hub := NewHub()
	alice := newFakeSession(1, "a1")
	bob := newFakeSession(2, "b1")

	hub.Register(alice)
	hub.Register(bob)

	// Alice sees her own online event plus Bob's
	aliceStatuses := alice.statusEvents()
	assert.Len(t, aliceStatuses, 2)
	assert.Equal(t, UserStatusPayload{UserID: 1, Status: StatusOnline}, aliceStatuses[0])
	assert.Equal(t, UserStatusPayload{UserID: 2, Status: StatusOnline}, aliceStatuses[1])

	// Bob connected last and sees only his own
	bobStatuses := bob.statusEvents()
	assert.Len(t, bobStatuses, 1)
	assert.Equal(t, UserStatusPayload{UserID: 2, Status: StatusOnline}, bobStatuses[0])
}

func TestHubUnregisterBroadcastsOffline(t *testing.T) {
	hub := NewHub()
	alice := newFakeSession(1, "a1")
	bob := newFakeSession(2, "b1")

	hub.Register(alice)
	hub.Register(bob)
	hub.Unregister(2, "b1")

	statuses := alice.statusEvents()
	last := statuses[len(statuses)-1]
	assert.Equal(t, UserStatusPayload{UserID: 2, Status: StatusOffline}, last)
}

func TestHubSendToUser(t *testing.T) {
	hub := NewHub()
	s := newFakeSession(1, "s1")
	hub.Register(s)

	ok := hub.SendToUser(1, Event{Type: EventPong})
	assert.True(t, ok)

	ok = hub.SendToUser(99, Event{Type: EventPong})
	assert.False(t, ok, "offline user should report undelivered")
}

func TestHubFullBufferDoesNotEvict(t *testing.T) {
	hub := NewHub()
	s := newFakeSession(1, "s1")
	s.full = true
	hub.Register(s)

	ok := hub.SendToUser(1, Event{Type: EventPong})
	assert.False(t, ok)
	assert.True(t, hub.IsOnline(1), "dropped event must not unregister the session")
}

func TestHubSnapshot(t *testing.T) {
	hub := NewHub()
	hub.Register(newFakeSession(1, "s1"))
	hub.Register(newFakeSession(2, "s2"))
	hub.Register(newFakeSession(3, "s3"))

	ids := hub.Snapshot()
	assert.ElementsMatch(t, []uint{1, 2, 3}, ids)
}

func TestHubShutdownClosesEverything(t *testing.T) {
	hub := NewHub()
	a := newFakeSession(1, "s1")
	b := newFakeSession(2, "s2")
	hub.Register(a)
	hub.Register(b)

	hub.Shutdown()

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.Empty(t, hub.Snapshot())

	// Registrations after shutdown are refused
	late := newFakeSession(3, "s3")
	hub.Register(late)
	assert.True(t, late.IsClosed())
	assert.False(t, hub.IsOnline(3))
}

func TestHubConcurrentRegisterUnregister(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := uint(n%10 + 1)
			s := newFakeSession(userID, fmt.Sprintf("sess-%d", n))
			hub.Register(s)
			hub.Unregister(userID, s.SessionID())
		}(i)
	}
	wg.Wait()

	// Every unregister matched its own session id, so nothing leaks
	for _, id := range hub.Snapshot() {
		t.Errorf("user %d still registered after all sessions unregistered", id)
	}
}
