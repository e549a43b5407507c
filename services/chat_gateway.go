package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/estate-market-api/dto"
	"gorm.io/gorm"
)

// ChatGateway is the request-facing entry point to chat. Every call names
// the requester explicitly and all chat authorization happens here or below.
type ChatGateway struct {
	directory *ChatDirectory
	ledger    *MessageLedger
	images    dto.ImageResolver
}

// NewChatGateway wires a gateway over db. images resolves property image keys
// in room responses and may be nil.
func NewChatGateway(db *gorm.DB, images dto.ImageResolver) *ChatGateway {
	return &ChatGateway{
		directory: NewChatDirectory(db),
		ledger:    NewMessageLedger(db),
		images:    images,
	}
}

// CreateRoom opens, or returns the existing, room between the requester and
// the seller of propertyID
func (g *ChatGateway) CreateRoom(ctx context.Context, requesterID, propertyID uint) (*dto.RoomResponse, bool, error) {
	if requesterID == 0 {
		return nil, false, ValidationError("A requester is required.")
	}
	if propertyID == 0 {
		return nil, false, ValidationError("A property is required.")
	}

	room, created, err := g.directory.CreateOrGet(ctx, requesterID, propertyID)
	if err != nil {
		return nil, false, err
	}
	resp := dto.NewRoomResponse(*room, g.images)
	return &resp, created, nil
}

// ListRooms returns the requester's rooms, each with its full history
func (g *ChatGateway) ListRooms(ctx context.Context, requesterID uint) ([]dto.RoomResponse, error) {
	if requesterID == 0 {
		return nil, ValidationError("A requester is required.")
	}

	rooms, err := g.directory.ListFor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return dto.NewRoomResponses(rooms, g.images), nil
}

// GetRoom returns one room the requester takes part in
func (g *ChatGateway) GetRoom(ctx context.Context, requesterID, roomID uint) (*dto.RoomResponse, error) {
	if requesterID == 0 {
		return nil, ValidationError("A requester is required.")
	}
	if roomID == 0 {
		return nil, errRoomNotFound
	}

	room, err := g.directory.GetFor(ctx, requesterID, roomID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewRoomResponse(*room, g.images)
	return &resp, nil
}

// SendMessage appends body to roomID on behalf of the requester
func (g *ChatGateway) SendMessage(ctx context.Context, requesterID, roomID uint, body string) (*dto.MessageResponse, error) {
	if requesterID == 0 {
		return nil, ValidationError("A requester is required.")
	}
	if roomID == 0 {
		return nil, ValidationError("A chatroom is required.")
	}
	if strings.TrimSpace(body) == "" {
		return nil, ValidationError("Message cannot be empty.")
	}

	msg, err := g.ledger.Append(ctx, roomID, requesterID, body)
	if err != nil {
		return nil, err
	}
	resp := dto.NewMessageResponse(*msg)
	return &resp, nil
}

// DeleteMessage removes messageID if the requester sent it
func (g *ChatGateway) DeleteMessage(ctx context.Context, requesterID, messageID uint) error {
	if requesterID == 0 {
		return ValidationError("A requester is required.")
	}
	if messageID == 0 {
		return errMessageMissing
	}
	return g.ledger.Delete(ctx, messageID, requesterID)
}
