package websocket

import (
	"sync"

	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/metrics"
	"go.uber.org/zap"
)

// Session is a live, authenticated connection the hub can push events to.
// Push must never block; implementations report false when the event could
// not be queued.
type Session interface {
	UserID() uint
	SessionID() string
	Push(event Event) bool
	Close()
}

// Hub tracks at most one live session per user and fans presence changes out
// to everyone connected. All state is guarded by a single mutex so that
// registration, lookup and broadcast observe one consistent order.
type Hub struct {
	mu       sync.Mutex
	sessions map[uint]Session
	closed   bool
}

// NewHub creates an empty presence hub
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uint]Session),
	}
}

// Register makes the session the current connection for its user. Any
// previous session for the same user is closed and replaced; the newest
// connection always wins. Everyone connected, the new session included,
// receives an online status event.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		s.Close()
		return
	}

	if prev, ok := h.sessions[s.UserID()]; ok && prev.SessionID() != s.SessionID() {
		prev.Close()
		metrics.Get().WSSupersededTotal.Inc()
		logger.Log.Info("Session superseded by newer connection",
			logger.WithUserID(s.UserID()),
			zap.String("old_session", prev.SessionID()),
			zap.String("new_session", s.SessionID()),
		)
	} else {
		metrics.Get().WSActiveConnections.Inc()
	}

	h.sessions[s.UserID()] = s
	metrics.Get().WSConnectionsTotal.Inc()

	logger.Log.Info("User connected",
		logger.WithUserID(s.UserID()),
		logger.WithSessionID(s.SessionID()),
		zap.Int("online_users", len(h.sessions)),
	)

	h.broadcastLocked(Event{
		Type:    EventUserStatus,
		Payload: UserStatusPayload{UserID: s.UserID(), Status: StatusOnline},
	})
}

// Unregister removes the session identified by userID and sessionID. When the
// user has since reconnected the stored session carries a different session
// id and the call is a no-op, so a slow disconnect can never evict a newer
// connection. Removal broadcasts an offline status event.
func (h *Hub) Unregister(userID uint, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.sessions[userID]
	if !ok || current.SessionID() != sessionID {
		if ok {
			metrics.Get().WSStaleEvictionsTotal.Inc()
			logger.Log.Debug("Ignoring disconnect from superseded session",
				logger.WithUserID(userID),
				logger.WithSessionID(sessionID),
			)
		}
		return
	}

	delete(h.sessions, userID)
	metrics.Get().WSActiveConnections.Dec()

	logger.Log.Info("User disconnected",
		logger.WithUserID(userID),
		logger.WithSessionID(sessionID),
		zap.Int("online_users", len(h.sessions)),
	)

	h.broadcastLocked(Event{
		Type:    EventUserStatus,
		Payload: UserStatusPayload{UserID: userID, Status: StatusOffline},
	})
}

// Lookup returns the current session for a user, if any
func (h *Hub) Lookup(userID uint) (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[userID]
	return s, ok
}

// IsOnline reports whether the user has a registered session
func (h *Hub) IsOnline(userID uint) bool {
	_, ok := h.Lookup(userID)
	return ok
}

// SendToUser pushes an event to a user's session. It reports false when the
// user is offline or the session's queue is full.
func (h *Hub) SendToUser(userID uint, event Event) bool {
	s, ok := h.Lookup(userID)
	if !ok {
		return false
	}
	if !s.Push(event) {
		metrics.Get().WSEventsDroppedTotal.Inc()
		return false
	}
	metrics.Get().WSEventsSentTotal.Inc()
	return true
}

// Snapshot returns the ids of all currently online users
func (h *Hub) Snapshot() []uint {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]uint, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown closes every session and rejects future registrations. Offline
// broadcasts are skipped since every peer is going away too.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, s := range h.sessions {
		s.Close()
		delete(h.sessions, id)
		metrics.Get().WSActiveConnections.Dec()
	}
	logger.Log.Info("Hub shut down, all sessions closed")
}

// broadcastLocked pushes an event to every session. Callers must hold h.mu.
func (h *Hub) broadcastLocked(event Event) {
	for _, s := range h.sessions {
		if s.Push(event) {
			metrics.Get().WSEventsSentTotal.Inc()
		} else {
			metrics.Get().WSEventsDroppedTotal.Inc()
		}
	}
}
