// Package websocket implements the real-time layer: the presence hub that
// tracks which users are online, the router that persists and forwards direct
// messages, and the connection plumbing that binds them to actual sockets.
package websocket

import (
	"encoding/json"
	"fmt"
)

// Event types sent to clients
const (
	EventMessage        = "message"
	EventUserStatus     = "userStatus"
	EventMessageDeleted = "messageDeleted"
	EventError          = "error"
	EventPong           = "pong"
)

// Event types received from clients
const (
	EventSendMessage = "sendMessage"
	EventPing        = "ping"
)

// Presence states carried by userStatus events
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Event is the envelope for every frame on the wire
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// UserStatusPayload announces a presence change
type UserStatusPayload struct {
	UserID uint   `json:"userId"`
	Status string `json:"status"`
}

// SendMessagePayload is the client request to deliver a direct message
type SendMessagePayload struct {
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content"`
}

// MessageDeletedPayload tells the receiver a message was removed
type MessageDeletedPayload struct {
	ID uint `json:"id"`
}

// ErrorPayload reports a failed client request
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParsePayload decodes an event payload into the given type. Payloads arrive
// as generic JSON so they need a second decode pass.
func ParsePayload(payload interface{}, dst interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}
