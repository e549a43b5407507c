package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatRoom is the single conversation between a buyer and a seller.
// ParticipantLow and ParticipantHigh hold the unordered pair so that
// (A, B) and (B, A) collide on the same unique index.
type ChatRoom struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	PropertyID      *uint         `gorm:"index" json:"property_id"` // nullable, cleared when the property is deleted
	Property        *Property     `gorm:"foreignKey:PropertyID;constraint:OnDelete:SET NULL" json:"property,omitempty"`
	SellerID        uint          `gorm:"not null;index" json:"seller_id"`
	Seller          User          `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller"`
	BuyerID         uint          `gorm:"not null;index" json:"buyer_id"`
	Buyer           User          `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"buyer"`
	ParticipantLow  uint          `gorm:"not null;uniqueIndex:idx_chat_room_pair" json:"-"`
	ParticipantHigh uint          `gorm:"not null;uniqueIndex:idx_chat_room_pair" json:"-"`
	Messages        []ChatMessage `gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE" json:"messages"`
	CreatedAt       time.Time     `json:"created_at"`
}

// TableName specifies the table name for the ChatRoom model
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// BeforeCreate fills the canonical pair columns from buyer and seller
func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	r.ParticipantLow, r.ParticipantHigh = CanonicalPair(r.BuyerID, r.SellerID)
	return nil
}

// HasParticipant reports whether userID is the buyer or the seller of the room
func (r *ChatRoom) HasParticipant(userID uint) bool {
	return userID != 0 && (r.BuyerID == userID || r.SellerID == userID)
}

// CanonicalPair orders two user ids so the smaller comes first
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// ChatMessage is one entry in a room's ledger. Messages are hard-deleted.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatRoomID uint      `gorm:"not null;index:idx_chat_message_room_ts,priority:1" json:"chat_room_id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	Sender     User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Body       string    `gorm:"column:message;type:text;not null" json:"message"`
	Timestamp  time.Time `gorm:"not null;index:idx_chat_message_room_ts,priority:2" json:"timestamp"`
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}
