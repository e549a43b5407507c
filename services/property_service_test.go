package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func uintPtr(u uint) *uint        { return &u }

func listPtr(l ...string) *dto.FlexibleList {
	fl := dto.FlexibleList(l)
	return &fl
}

func validPropertyInput() dto.PropertyInput {
	return dto.PropertyInput{
		Name:         strPtr("  Sea view flat "),
		Location:     strPtr("Goa"),
		Description:  strPtr("Two bedrooms facing the beach"),
		Price:        floatPtr(8500000),
		PropertyType: strPtr("Rent"),
		Amenities:    listPtr("pool", "gym"),
		FloorNumber:  uintPtr(3),
		TotalFloors:  uintPtr(10),
	}
}

func TestPropertyServiceCreate(t *testing.T) {
	ctx := context.Background()
	db := setupServiceTestDB(t)
	svc := NewPropertyService(db)
	seller := createTestUser(t, db, "seller")

	property, err := svc.Create(ctx, seller.ID, validPropertyInput())
	require.NoError(t, err)
	assert.Equal(t, "Sea view flat", property.Name)
	assert.Equal(t, "rent", property.PropertyType)
	assert.Equal(t, models.StringList{"pool", "gym"}, property.Amenities)
	assert.Equal(t, "seller", property.Seller.Username)

	tests := []struct {
		name          string
		mutate        func(in *dto.PropertyInput)
		expectedError string
	}{
		{"missing name", func(in *dto.PropertyInput) { in.Name = nil }, "name is required."},
		{"blank location", func(in *dto.PropertyInput) { in.Location = strPtr("  ") }, "location is required."},
		{"zero price", func(in *dto.PropertyInput) { in.Price = floatPtr(0) }, "price must be greater than 0."},
		{"huge price", func(in *dto.PropertyInput) { in.Price = floatPtr(1e9) }, "price must have at most 10 digits."},
		{"missing type", func(in *dto.PropertyInput) { in.PropertyType = nil }, "property_type is required."},
		{"floor above total", func(in *dto.PropertyInput) { in.FloorNumber = uintPtr(11) }, "floor_number cannot exceed total_floors."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPropertyInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, seller.ID, in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestPropertyServiceList(t *testing.T) {
	ctx := context.Background()
	db := setupServiceTestDB(t)
	svc := NewPropertyService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	older := createTestProperty(t, db, alice, "older")
	db.Model(&older).Update("created_at", time.Now().Add(-time.Hour))
	newer := createTestProperty(t, db, bob, "newer")

	all, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID, "newest first")
	assert.Equal(t, older.ID, all[1].ID)

	withoutBob, err := svc.List(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, withoutBob, 1)
	assert.Equal(t, older.ID, withoutBob[0].ID)

	mine, err := svc.ListBySeller(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "alice", mine[0].Seller.Username)
}

func TestPropertyServiceUpdate(t *testing.T) {
	ctx := context.Background()
	db := setupServiceTestDB(t)
	svc := NewPropertyService(db)

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	property := createTestProperty(t, db, owner, "Original")

	t.Run("partial update changes only sent fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, owner.ID, property.ID, dto.PropertyInput{Price: floatPtr(500000)}, true)
		require.NoError(t, err)
		assert.Equal(t, 500000.0, updated.Price)
		assert.Equal(t, "Original", updated.Name)
	})

	t.Run("full update requires all required fields", func(t *testing.T) {
		_, err := svc.Update(ctx, owner.ID, property.ID, dto.PropertyInput{Name: strPtr("New")}, false)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("full update", func(t *testing.T) {
		updated, err := svc.Update(ctx, owner.ID, property.ID, validPropertyInput(), false)
		require.NoError(t, err)
		assert.Equal(t, "Sea view flat", updated.Name)
		assert.Equal(t, owner.ID, updated.SellerID)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		_, err := svc.Update(ctx, other.ID, property.ID, dto.PropertyInput{Price: floatPtr(1)}, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing property", func(t *testing.T) {
		_, err := svc.Update(ctx, owner.ID, 999, dto.PropertyInput{}, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPropertyServiceAddImage(t *testing.T) {
	ctx := context.Background()
	db := setupServiceTestDB(t)
	svc := NewPropertyService(db)

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	property := createTestProperty(t, db, owner, "With images")

	updated, err := svc.AddImage(ctx, owner.ID, property.ID, "properties/1/back.png")
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"properties/1/front.png", "properties/1/back.png"}, updated.Images)

	_, err = svc.AddImage(ctx, other.ID, property.ID, "x.png")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPropertyServiceDeleteDetachesRooms(t *testing.T) {
	ctx := context.Background()
	db := setupServiceTestDB(t)
	svc := NewPropertyService(db)
	gw := NewChatGateway(db, nil)

	buyer := createTestUser(t, db, "buyer")
	seller := createTestUser(t, db, "seller")
	property := createTestProperty(t, db, seller, "Going away")

	room, _, err := gw.CreateRoom(ctx, buyer.ID, property.ID)
	require.NoError(t, err)
	_, err = gw.SendMessage(ctx, buyer.ID, room.ID, "still available?")
	require.NoError(t, err)
	_, err = NewWishlistService(db).Add(ctx, buyer.ID, property.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, buyer.ID, property.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := svc.Delete(ctx, seller.ID, property.ID)
	require.NoError(t, err)
	assert.Equal(t, property.ID, deleted.ID)

	_, err = svc.Get(ctx, property.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := gw.GetRoom(ctx, buyer.ID, room.ID)
	require.NoError(t, err)
	assert.Nil(t, after.Property, "room survives without its property")
	assert.Len(t, after.Messages, 1)

	var wishlistCount int64
	db.Model(&models.Wishlist{}).Count(&wishlistCount)
	assert.Zero(t, wishlistCount)
}
