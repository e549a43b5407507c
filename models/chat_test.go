package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCanonicalPair(t *testing.T) {
	low, high := CanonicalPair(9, 3)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(9), high)

	low, high = CanonicalPair(3, 9)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(9), high)
}

func TestChatRoomHasParticipant(t *testing.T) {
	room := ChatRoom{BuyerID: 1, SellerID: 2}

	assert.True(t, room.HasParticipant(1))
	assert.True(t, room.HasParticipant(2))
	assert.False(t, room.HasParticipant(3))
	assert.False(t, room.HasParticipant(0))
}

func TestChatRoomPairIsUnordered(t *testing.T) {
	db := setupModelTestDB(t)

	a := User{Username: "a", Email: "a@example.com", PasswordHash: "x"}
	b := User{Username: "b", Email: "b@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	first := ChatRoom{BuyerID: b.ID, SellerID: a.ID}
	require.NoError(t, db.Create(&first).Error)
	assert.Equal(t, a.ID, first.ParticipantLow)
	assert.Equal(t, b.ID, first.ParticipantHigh)

	// Reversed roles collide on the same pair
	reversed := ChatRoom{BuyerID: a.ID, SellerID: b.ID}
	err := db.Create(&reversed).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	db.Model(&ChatRoom{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestChatMessagesLoadInOrder(t *testing.T) {
	db := setupModelTestDB(t)

	a := User{Username: "a", Email: "a@example.com", PasswordHash: "x"}
	b := User{Username: "b", Email: "b@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	room := ChatRoom{BuyerID: a.ID, SellerID: b.ID}
	require.NoError(t, db.Create(&room).Error)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&ChatMessage{ChatRoomID: room.ID, SenderID: a.ID, Body: "second", Timestamp: now.Add(time.Second)}).Error)
	require.NoError(t, db.Create(&ChatMessage{ChatRoomID: room.ID, SenderID: b.ID, Body: "first", Timestamp: now}).Error)

	var loaded ChatRoom
	err := db.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("timestamp ASC, id ASC")
	}).First(&loaded, room.ID).Error
	require.NoError(t, err)

	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "first", loaded.Messages[0].Body)
	assert.Equal(t, "second", loaded.Messages[1].Body)
}
