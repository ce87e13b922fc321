// Package repository contains the data-access layer.
package repository

import (
	"context"
	"errors"

	"github.com/sanojDD/Balentine/internal/models"
	"gorm.io/gorm"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// MessageStore is the durable log of direct messages. It is the source of
// truth for history: live delivery is best-effort, a write here is not.
type MessageStore interface {
	// Append inserts a new message and returns it with the server-assigned
	// id and timestamp. Ids are monotonically non-decreasing across calls.
	Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error)

	// History returns all messages exchanged between the two users,
	// ascending by creation order.
	History(ctx context.Context, userA, userB uint) ([]models.Message, error)

	// GetByID fetches a single message.
	GetByID(ctx context.Context, id uint) (*models.Message, error)

	// DeleteByID removes a message unconditionally. Sender-only
	// authorization is the caller's responsibility.
	DeleteByID(ctx context.Context, id uint) error
}

type messageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a gorm-backed MessageStore
func NewMessageStore(db *gorm.DB) MessageStore {
	return &messageStore{db: db}
}

func (s *messageStore) Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrInvalidInput
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *messageStore) History(ctx context.Context, userA, userB uint) ([]models.Message, error) {
	var messages []models.Message

	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("id ASC").
		Find(&messages).Error

	return messages, err
}

func (s *messageStore) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).First(&msg, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *messageStore) DeleteByID(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
