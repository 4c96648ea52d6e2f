// Package repository 房间仓储单元测试
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

func TestRoomRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	qty := 3
	room := &models.Room{
		Name:      "海景大床房",
		Type:      models.RoomTypeDeluxe,
		Price:     420.5,
		Capacity:  2,
		Quantity:  &qty,
		Available: true,
		Amenities: []string{"wifi", "minibar"},
		Images:    []string{"rooms/1.jpg"},
	}
	require.NoError(t, repo.Create(ctx, room))
	assert.NotZero(t, room.ID)

	found, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "海景大床房", found.Name)
	assert.Equal(t, 3, found.UnitCount())
	assert.Equal(t, []string{"wifi", "minibar"}, []string(found.Amenities))
	assert.True(t, found.Available)
}

func TestRoomRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepository_SetAvailable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := seedRoom(t, db, "101", models.RoomTypeStandard, 100, 2, true)

	require.NoError(t, repo.SetAvailable(ctx, room.ID, false))
	found, _ := repo.GetByID(ctx, room.ID)
	assert.False(t, found.Available)

	require.NoError(t, repo.SetAvailable(ctx, room.ID, true))
	found, _ = repo.GetByID(ctx, room.ID)
	assert.True(t, found.Available)

	assert.ErrorIs(t, repo.SetAvailable(ctx, 404, true), gorm.ErrRecordNotFound)
}

func TestRoomRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	seedRoom(t, db, "101", models.RoomTypeStandard, 100, 2, true)
	seedRoom(t, db, "102", models.RoomTypeStandard, 120, 3, false)
	seedRoom(t, db, "201", models.RoomTypeSuite, 600, 4, true)

	rooms, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"type": models.RoomTypeStandard})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rooms, 2)

	rooms, total, err = repo.List(ctx, 0, 10, map[string]interface{}{"available": true, "min_capacity": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "201", rooms[0].Name)

	rooms, total, err = repo.List(ctx, 1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rooms, 1)
	assert.Equal(t, "102", rooms[0].Name)
}

func TestRoomRepository_ListAvailable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	seedRoom(t, db, "suite", models.RoomTypeSuite, 600, 4, true)
	seedRoom(t, db, "closed", models.RoomTypeStandard, 80, 2, false)
	seedRoom(t, db, "cheap", models.RoomTypeStandard, 100, 2, true)

	rooms, err := repo.ListAvailable(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "cheap", rooms[0].Name)
	assert.Equal(t, "suite", rooms[1].Name)

	rooms, err = repo.ListAvailable(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "suite", rooms[0].Name)
}

func TestRoomRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := seedRoom(t, db, "101", models.RoomTypeStandard, 100, 2, true)

	require.NoError(t, repo.UpdateFields(ctx, room.ID, map[string]interface{}{"price": 150.0}))
	found, _ := repo.GetByID(ctx, room.ID)
	assert.Equal(t, 150.0, found.Price)

	found.Name = "101A"
	require.NoError(t, repo.Update(ctx, found))
	found, _ = repo.GetByID(ctx, room.ID)
	assert.Equal(t, "101A", found.Name)

	require.NoError(t, repo.Delete(ctx, room.ID))
	_, err := repo.GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
