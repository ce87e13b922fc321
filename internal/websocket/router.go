package websocket

import (
	"context"
	"errors"
	"strings"

	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/metrics"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/sanojDD/Balentine/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrEmptyContent rejects messages that are blank after trimming
	ErrEmptyContent = errors.New("message content is empty")
	// ErrStoreFailed wraps persistence failures; nothing was delivered
	ErrStoreFailed = errors.New("failed to store message")
)

// Router persists direct messages and delivers them to live sessions. The
// store is authoritative: a message is only forwarded after it has been
// written, and a delivery failure never loses data since the receiver can
// load history on their next connect.
type Router struct {
	hub   *Hub
	store repository.MessageStore
}

// NewRouter creates a message router backed by the given hub and store
func NewRouter(hub *Hub, store repository.MessageStore) *Router {
	return &Router{hub: hub, store: store}
}

// Send validates, persists and routes one direct message. The receiver copy
// is best effort; the sender always gets an echo of the stored message so
// their view reflects what was actually written. Self-addressed messages are
// stored and echoed once.
func (r *Router) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	msg, err := r.store.Append(ctx, senderID, receiverID, content)
	if err != nil {
		logger.Log.Error("Message persist failed",
			logger.WithUserID(senderID),
			zap.Uint("receiver_id", receiverID),
			zap.Error(err),
		)
		return nil, errors.Join(ErrStoreFailed, err)
	}

	metrics.Get().WSMessagesRouted.Inc()

	event := Event{Type: EventMessage, Payload: msg}

	if senderID != receiverID {
		if !r.hub.SendToUser(receiverID, event) {
			logger.Log.Debug("Receiver offline, message stored only",
				zap.Uint("message_id", msg.ID),
				zap.Uint("receiver_id", receiverID),
			)
		}
	}

	r.hub.SendToUser(senderID, event)

	return msg, nil
}

// NotifyDeleted tells the receiver's live session that a message is gone.
// Offline receivers simply never see the notification; the row is already
// deleted so history stays consistent.
func (r *Router) NotifyDeleted(receiverID, messageID uint) {
	r.hub.SendToUser(receiverID, Event{
		Type:    EventMessageDeleted,
		Payload: MessageDeletedPayload{ID: messageID},
	})
}
