package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errNotParticipant = newError(ErrNotParticipant, "NOT_PARTICIPANT", "You are not a participant in this chatroom.")
	errNotSender      = newError(ErrNotSender, "NOT_SENDER", "You can only delete your own messages.")
	errMessageMissing = NotFoundError("MESSAGE_NOT_FOUND", "Message not found.")
)

// MessageLedger is the append-only, time-ordered message log of each room
type MessageLedger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMessageLedger creates a ledger backed by db
func NewMessageLedger(db *gorm.DB) *MessageLedger {
	return &MessageLedger{db: db, now: time.Now}
}

// Append records body as sent by senderID in roomID. The timestamp is never
// earlier than the newest message already in the room.
func (l *MessageLedger) Append(ctx context.Context, roomID, senderID uint, body string) (*models.ChatMessage, error) {
	var message models.ChatMessage

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.ChatRoom
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, roomID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errRoomNotFound
			}
			return fmt.Errorf("failed to load chat room: %w", err)
		}

		if !room.HasParticipant(senderID) {
			return errNotParticipant
		}

		ts := l.now().UTC()
		var latest models.ChatMessage
		err = tx.Where("chat_room_id = ?", roomID).Order("timestamp DESC").Limit(1).Find(&latest).Error
		if err != nil {
			return fmt.Errorf("failed to read latest message: %w", err)
		}
		if latest.ID != 0 && latest.Timestamp.After(ts) {
			ts = latest.Timestamp
		}

		message = models.ChatMessage{
			ChatRoomID: roomID,
			SenderID:   senderID,
			Body:       body,
			Timestamp:  ts,
		}
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}
		return tx.First(&message.Sender, senderID).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Uint(logger.FieldRoomID, roomID).
		Uint(logger.FieldMessageID, message.ID).
		Msg("message appended")
	return &message, nil
}

// ListFor returns the full history of roomID, oldest first
func (l *MessageLedger) ListFor(ctx context.Context, roomID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := l.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_room_id = ?", roomID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// Delete removes messageID if requesterID sent it
func (l *MessageLedger) Delete(ctx context.Context, messageID, requesterID uint) error {
	db := l.db.WithContext(ctx)

	var message models.ChatMessage
	if err := db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errMessageMissing
		}
		return fmt.Errorf("failed to load message: %w", err)
	}

	if message.SenderID != requesterID {
		return errNotSender
	}

	result := db.Delete(&models.ChatMessage{}, message.ID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Deleted concurrently by the same sender
		return errMessageMissing
	}

	logger.Ctx(ctx).Info().
		Uint(logger.FieldRoomID, message.ChatRoomID).
		Uint(logger.FieldMessageID, message.ID).
		Msg("message deleted")
	return nil
}
