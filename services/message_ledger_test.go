package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db     *gorm.DB
	ledger *MessageLedger
	clock  *fixedClock
	alice  models.User
	bob    models.User
	carol  models.User
	room   models.ChatRoom
}

func setupLedger(t *testing.T) *ledgerFixture {
	t.Helper()

	db := setupServiceTestDB(t)
	f := &ledgerFixture{
		db:    db,
		clock: &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		alice: createTestUser(t, db, "alice"),
		bob:   createTestUser(t, db, "bob"),
		carol: createTestUser(t, db, "carol"),
	}
	f.ledger = NewMessageLedger(db)
	f.ledger.now = f.clock.Now

	f.room = models.ChatRoom{BuyerID: f.alice.ID, SellerID: f.bob.ID}
	require.NoError(t, db.Create(&f.room).Error)
	return f
}

func (f *ledgerFixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.ChatMessage{}).Count(&n).Error)
	return n
}

func TestMessageLedgerAppend(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	msg, err := f.ledger.Append(ctx, f.room.ID, f.alice.ID, "hello")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hello", msg.Body)
	assert.Equal(t, "alice", msg.Sender.Username)
	assert.True(t, msg.Timestamp.Equal(f.clock.t))

	t.Run("non participant is rejected and ledger unchanged", func(t *testing.T) {
		before := f.count(t)
		_, err := f.ledger.Append(ctx, f.room.ID, f.carol.ID, "let me in")
		assert.ErrorIs(t, err, ErrNotParticipant)
		assert.EqualError(t, err, "You are not a participant in this chatroom.")
		assert.Equal(t, before, f.count(t))
	})

	t.Run("missing room", func(t *testing.T) {
		_, err := f.ledger.Append(ctx, 9999, f.alice.ID, "anyone?")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMessageLedgerTimestampsNeverDecrease(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	first, err := f.ledger.Append(ctx, f.room.ID, f.alice.ID, "first")
	require.NoError(t, err)

	// Clock steps backwards, e.g. a different server with skew
	f.clock.t = f.clock.t.Add(-time.Minute)
	second, err := f.ledger.Append(ctx, f.room.ID, f.bob.ID, "second")
	require.NoError(t, err)
	assert.False(t, second.Timestamp.Before(first.Timestamp))

	messages, err := f.ledger.ListFor(ctx, f.room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
}

func TestMessageLedgerListForIsStable(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	// Identical timestamps fall back to id order
	for _, body := range []string{"a", "b", "c"} {
		_, err := f.ledger.Append(ctx, f.room.ID, f.alice.ID, body)
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		messages, err := f.ledger.ListFor(ctx, f.room.ID)
		require.NoError(t, err)
		require.Len(t, messages, 3)
		assert.Equal(t, "a", messages[0].Body)
		assert.Equal(t, "b", messages[1].Body)
		assert.Equal(t, "c", messages[2].Body)
		assert.Equal(t, "alice", messages[0].Sender.Username)
	}
}

func TestMessageLedgerDelete(t *testing.T) {
	ctx := context.Background()
	f := setupLedger(t)

	m1, err := f.ledger.Append(ctx, f.room.ID, f.alice.ID, "hello")
	require.NoError(t, err)
	f.clock.t = f.clock.t.Add(time.Second)
	m2, err := f.ledger.Append(ctx, f.room.ID, f.bob.ID, "hi")
	require.NoError(t, err)
	f.clock.t = f.clock.t.Add(time.Second)
	m3, err := f.ledger.Append(ctx, f.room.ID, f.alice.ID, "how much?")
	require.NoError(t, err)

	tests := []struct {
		name         string
		messageID    uint
		requesterID  uint
		expectedKind error
	}{
		{"other participant cannot delete", m1.ID, f.bob.ID, ErrNotSender},
		{"outsider cannot delete", m1.ID, f.carol.ID, ErrNotSender},
		{"missing message", 9999, f.alice.ID, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ledger.Delete(ctx, tt.messageID, tt.requesterID)
			assert.ErrorIs(t, err, tt.expectedKind)
			assert.Equal(t, int64(3), f.count(t))
		})
	}

	t.Run("sender deletes a middle message", func(t *testing.T) {
		require.NoError(t, f.ledger.Delete(ctx, m2.ID, f.bob.ID))

		messages, err := f.ledger.ListFor(ctx, f.room.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, m1.ID, messages[0].ID)
		assert.Equal(t, "hello", messages[0].Body)
		assert.Equal(t, m3.ID, messages[1].ID)
		assert.Equal(t, "how much?", messages[1].Body)
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		err := f.ledger.Delete(ctx, m2.ID, f.bob.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
