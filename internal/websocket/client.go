package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sanojDD/Balentine/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next frame from the peer
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxMessageSize = 64 * 1024

	// Outbound event buffer size
	sendBufferSize = 256
)

// RateLimiter caps inbound frames per connection. Tokens refill continuously
// at perSecond up to capacity; each frame costs one.
type RateLimiter struct {
	mu        sync.Mutex
	available float64
	capacity  float64
	perSecond float64
	last      time.Time
}

// NewRateLimiter creates a limiter allowing perSecond sustained frames with
// room for the given burst.
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	return &RateLimiter{
		available: float64(burst),
		capacity:  float64(burst),
		perSecond: float64(perSecond),
		last:      time.Now(),
	}
}

// Allow consumes a token if one is available
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.available += now.Sub(r.last).Seconds() * r.perSecond
	r.last = now
	if r.available > r.capacity {
		r.available = r.capacity
	}

	if r.available < 1 {
		return false
	}
	r.available--
	return true
}

// Client is a Session backed by a real websocket connection. Each connection
// gets a fresh session id so the hub can tell a reconnect apart from the
// connection it replaced.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	router *Router

	userID    uint
	sessionID string

	send chan Event

	rateLimiter *RateLimiter

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an accepted connection for the given user
func NewClient(hub *Hub, router *Router, conn *websocket.Conn, userID uint) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:        conn,
		hub:         hub,
		router:      router,
		userID:      userID,
		sessionID:   uuid.NewString(),
		send:        make(chan Event, sendBufferSize),
		rateLimiter: NewRateLimiter(10, 20),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// UserID implements Session
func (c *Client) UserID() uint { return c.userID }

// SessionID implements Session
func (c *Client) SessionID() string { return c.sessionID }

// Push queues an event for delivery without blocking. It reports false when
// the buffer is full or the client is shutting down.
func (c *Client) Push(event Event) bool {
	select {
	case c.send <- event:
		return true
	case <-c.ctx.Done():
		return false
	default:
		logger.Log.Warn("Send buffer full, dropping event",
			logger.WithUserID(c.userID),
			zap.String("event_type", event.Type),
		)
		return false
	}
}

// Close shuts the connection down. Safe to call multiple times.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.cancel()
	c.conn.Close(websocket.StatusNormalClosure, "closing")
}

// ReadPump reads frames from the connection until it drops. It blocks, so
// the handler runs it on the request goroutine while WritePump runs alongside.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c.userID, c.sessionID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		readCtx, readCancel := context.WithTimeout(c.ctx, pongWait)
		_, data, err := c.conn.Read(readCtx)
		readCancel()

		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				logger.Log.Info("Client disconnected normally", logger.WithUserID(c.userID))
			} else if c.ctx.Err() == nil {
				logger.Log.Warn("Read error for client", logger.WithUserID(c.userID), zap.Error(err))
			}
			return
		}

		if !c.rateLimiter.Allow() {
			c.pushError("rate_limited", "Too many messages, please slow down")
			continue
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			logger.Log.Warn("Invalid frame from client",
				logger.WithUserID(c.userID), zap.Error(err))
			c.pushError("invalid_json", "Failed to parse message")
			continue
		}

		c.handleEvent(&event)
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "server shutdown")
			return

		case event := <-c.send:
			data, err := json.Marshal(event)
			if err != nil {
				logger.Log.Error("Failed to encode event",
					logger.WithUserID(c.userID), zap.Error(err))
				continue
			}

			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err = c.conn.Write(ctx, websocket.MessageText, data)
			cancel()

			if err != nil {
				if c.ctx.Err() == nil {
					logger.Log.Warn("Write error for client",
						logger.WithUserID(c.userID), zap.Error(err))
				}
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Ping(ctx)
			cancel()

			if err != nil {
				logger.Log.Warn("Ping failed for client",
					logger.WithUserID(c.userID), zap.Error(err))
				return
			}
		}
	}
}

// handleEvent dispatches one inbound event
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventPing:
		_ = c.Push(Event{Type: EventPong})

	case EventSendMessage:
		var payload SendMessagePayload
		if err := ParsePayload(event.Payload, &payload); err != nil {
			c.pushError("invalid_payload", "Malformed sendMessage payload")
			return
		}
		c.handleSendMessage(payload)

	default:
		logger.Log.Warn("Unknown event type from client",
			logger.WithUserID(c.userID),
			zap.String("event_type", event.Type),
		)
		c.pushError("unknown_type", "Unknown event type: "+event.Type)
	}
}

func (c *Client) handleSendMessage(payload SendMessagePayload) {
	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	_, err := c.router.Send(ctx, c.userID, payload.ReceiverID, payload.Content)
	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyContent):
		c.pushError("empty_message", "Message content cannot be empty")
	default:
		c.pushError("storage_error", "Failed to send message")
	}
}

func (c *Client) pushError(code, message string) {
	_ = c.Push(Event{
		Type:    EventError,
		Payload: ErrorPayload{Code: code, Message: message},
	})
}
