package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/models"
	"gorm.io/gorm"
)

var (
	errRoomNotFound = NotFoundError("ROOM_NOT_FOUND", "Chatroom not found.")
	errSelfContact  = newError(ErrSelfContact, "SELF_CONTACT", "You cannot contact yourself.")
)

// ChatDirectory keeps at most one room per unordered {buyer, seller} pair
type ChatDirectory struct {
	db *gorm.DB
}

// NewChatDirectory creates a directory backed by db
func NewChatDirectory(db *gorm.DB) *ChatDirectory {
	return &ChatDirectory{db: db}
}

// withRoomDetails eager-loads everything a room response shows
func withRoomDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Property").
		Preload("Property.Seller").
		Preload("Buyer").
		Preload("Seller").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC, id ASC")
		}).
		Preload("Messages.Sender")
}

// CreateOrGet returns the room between requesterID and the seller of propertyID,
// creating it when the pair has never talked. created is false when the room
// already existed, in which case its property is left unchanged.
func (d *ChatDirectory) CreateOrGet(ctx context.Context, requesterID, propertyID uint) (*models.ChatRoom, bool, error) {
	db := d.db.WithContext(ctx)

	var property models.Property
	if err := db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, NotFoundError("PROPERTY_NOT_FOUND", "Property not found.")
		}
		return nil, false, fmt.Errorf("failed to load property: %w", err)
	}

	sellerID := property.SellerID
	if sellerID == requesterID {
		return nil, false, errSelfContact
	}

	existing, err := d.findByPair(ctx, requesterID, sellerID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	room := models.ChatRoom{
		PropertyID: &property.ID,
		BuyerID:    requesterID,
		SellerID:   sellerID,
	}
	if err := db.Create(&room).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, false, fmt.Errorf("failed to create chat room: %w", err)
		}

		// Another request created the pair first; hand back its room
		logger.Ctx(ctx).Debug().
			Uint("buyer_id", requesterID).
			Uint("seller_id", sellerID).
			Msg("chat room insert lost race, re-reading existing room")

		existing, err := d.findByPair(ctx, requesterID, sellerID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, errors.New("chat room for pair vanished after insert conflict")
		}
		return existing, false, nil
	}

	loaded, err := d.load(ctx, room.ID)
	if err != nil {
		return nil, false, err
	}

	logger.Ctx(ctx).Info().
		Uint(logger.FieldRoomID, room.ID).
		Uint(logger.FieldPropertyID, property.ID).
		Msg("chat room created")
	return loaded, true, nil
}

// ListFor returns every room identity takes part in, as buyer or seller
func (d *ChatDirectory) ListFor(ctx context.Context, identity uint) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := withRoomDetails(d.db.WithContext(ctx)).
		Where("buyer_id = ? OR seller_id = ?", identity, identity).
		Order("id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	return rooms, nil
}

// GetFor returns the room if identity takes part in it. A room that exists
// but belongs to others is reported exactly like a missing one.
func (d *ChatDirectory) GetFor(ctx context.Context, identity, roomID uint) (*models.ChatRoom, error) {
	room, err := d.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(identity) {
		return nil, errRoomNotFound
	}
	return room, nil
}

func (d *ChatDirectory) load(ctx context.Context, roomID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := withRoomDetails(d.db.WithContext(ctx)).First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRoomNotFound
		}
		return nil, fmt.Errorf("failed to load chat room: %w", err)
	}
	return &room, nil
}

// findByPair returns nil, nil when the pair has no room yet
func (d *ChatDirectory) findByPair(ctx context.Context, a, b uint) (*models.ChatRoom, error) {
	low, high := models.CanonicalPair(a, b)

	var room models.ChatRoom
	err := withRoomDetails(d.db.WithContext(ctx)).
		Where("participant_low = ? AND participant_high = ?", low, high).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up chat room: %w", err)
	}
	return &room, nil
}
