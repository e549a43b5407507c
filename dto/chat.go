package dto

import (
	"time"

	"github.com/kendall-kelly/estate-market-api/models"
)

// MessageResponse is one ledger entry
type MessageResponse struct {
	ID        uint        `json:"id"`
	Sender    UserSummary `json:"sender"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// RoomResponse is a chat room with its full message history
type RoomResponse struct {
	ID        uint              `json:"id"`
	Property  *PropertyResponse `json:"property"`
	Seller    UserSummary       `json:"seller"`
	Buyer     UserSummary       `json:"buyer"`
	CreatedAt time.Time         `json:"created_at"`
	Messages  []MessageResponse `json:"messages"`
}

// NewMessageResponse maps a message; the sender must be loaded
func NewMessageResponse(m models.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Sender:    NewUserSummary(m.Sender),
		Message:   m.Body,
		Timestamp: m.Timestamp,
	}
}

// NewMessageResponses maps messages in the order given
func NewMessageResponses(msgs []models.ChatMessage) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, NewMessageResponse(m))
	}
	return out
}

// NewRoomResponse maps a room loaded with its property, participants and messages
func NewRoomResponse(r models.ChatRoom, resolve ImageResolver) RoomResponse {
	resp := RoomResponse{
		ID:        r.ID,
		Seller:    NewUserSummary(r.Seller),
		Buyer:     NewUserSummary(r.Buyer),
		CreatedAt: r.CreatedAt,
		Messages:  NewMessageResponses(r.Messages),
	}
	if r.Property != nil {
		p := NewPropertyResponse(*r.Property, resolve)
		resp.Property = &p
	}
	return resp
}

// NewRoomResponses maps rooms in the order given
func NewRoomResponses(rooms []models.ChatRoom, resolve ImageResolver) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, NewRoomResponse(r, resolve))
	}
	return out
}
