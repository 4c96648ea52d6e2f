package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// ==================== 区间计算测试 ====================

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		want   bool
	}{
		{"inside", date(2025, 3, 2), date(2025, 3, 3), true},
		{"straddles start", date(2025, 2, 27), date(2025, 3, 2), true},
		{"straddles end", date(2025, 3, 4), date(2025, 3, 8), true},
		{"checkout on checkin day", date(2025, 2, 25), date(2025, 3, 1), false},
		{"checkin on checkout day", date(2025, 3, 5), date(2025, 3, 8), false},
		{"disjoint", date(2025, 4, 1), date(2025, 4, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, date(2025, 3, 1), date(2025, 3, 5)))
		})
	}
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(date(2025, 3, 1), date(2025, 3, 2)))
	assert.ErrorIs(t, ValidateRange(date(2025, 3, 2), date(2025, 3, 2)), apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateRange(date(2025, 3, 3), date(2025, 3, 2)), apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateRange(time.Time{}, date(2025, 3, 2)), apperrors.ErrInvalidDateRange)
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	got := NormalizeDate(time.Date(2025, 3, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, date(2025, 3, 1), got)
	assert.Equal(t, 4, Nights(date(2025, 3, 1), date(2025, 3, 5)))
}

func TestConsumesInventory(t *testing.T) {
	assert.True(t, ConsumesInventory(models.ReservationStatusConfirmed))
	assert.True(t, ConsumesInventory(models.ReservationStatusCheckedIn))
	assert.False(t, ConsumesInventory(models.ReservationStatusPending))
	assert.False(t, ConsumesInventory(models.ReservationStatusCancelled))
	assert.False(t, ConsumesInventory(models.ReservationStatusCheckedOut))
}

// ==================== AvailableUnits 测试 ====================

func singleUnitRoom() *models.Room {
	qty := 1
	return &models.Room{ID: 1, Quantity: &qty, Available: true}
}

func reservationOn(roomID int64, status string, in, out time.Time) *models.Reservation {
	return &models.Reservation{RoomID: roomID, Status: status, CheckInDate: in, CheckOutDate: out}
}

func TestAvailableUnits_ConfirmedBlocksOverlap(t *testing.T) {
	room := singleUnitRoom()
	existing := []*models.Reservation{
		reservationOn(1, models.ReservationStatusConfirmed, date(2025, 3, 1), date(2025, 3, 5)),
	}

	units, err := AvailableUnits(room, existing, date(2025, 3, 3), date(2025, 3, 6))
	require.NoError(t, err)
	assert.Equal(t, 0, units)
	assert.False(t, IsOfferable(room, units))

	units, err = AvailableUnits(room, existing, date(2025, 3, 5), date(2025, 3, 8))
	require.NoError(t, err)
	assert.Equal(t, 1, units)
}

func TestAvailableUnits_CancelRestoresUnit(t *testing.T) {
	room := singleUnitRoom()
	x := reservationOn(1, models.ReservationStatusConfirmed, date(2025, 3, 1), date(2025, 3, 5))
	existing := []*models.Reservation{x}

	before, err := AvailableUnits(room, existing, date(2025, 3, 2), date(2025, 3, 4))
	require.NoError(t, err)

	x.Status = models.ReservationStatusCancelled
	after, err := AvailableUnits(room, existing, date(2025, 3, 2), date(2025, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestAvailableUnits_PendingAndOtherRoomsIgnored(t *testing.T) {
	room := singleUnitRoom()
	existing := []*models.Reservation{
		reservationOn(1, models.ReservationStatusPending, date(2025, 3, 1), date(2025, 3, 5)),
		reservationOn(2, models.ReservationStatusConfirmed, date(2025, 3, 1), date(2025, 3, 5)),
	}
	units, err := AvailableUnits(room, existing, date(2025, 3, 1), date(2025, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, units)
}

func TestAvailableUnits_MultipleUnits(t *testing.T) {
	qty := 3
	room := &models.Room{ID: 1, Quantity: &qty, Available: true}
	existing := []*models.Reservation{
		reservationOn(1, models.ReservationStatusConfirmed, date(2025, 3, 1), date(2025, 3, 5)),
		reservationOn(1, models.ReservationStatusCheckedIn, date(2025, 3, 3), date(2025, 3, 4)),
	}
	units, err := AvailableUnits(room, existing, date(2025, 3, 2), date(2025, 3, 6))
	require.NoError(t, err)
	assert.Equal(t, 1, units)
}

func TestAvailableUnits_NilQuantityMeansOne(t *testing.T) {
	room := &models.Room{ID: 1, Available: true}
	units, err := AvailableUnits(room, nil, date(2025, 3, 1), date(2025, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, units)
}

func TestAvailableUnits_InvalidRange(t *testing.T) {
	_, err := AvailableUnits(singleUnitRoom(), nil, date(2025, 3, 5), date(2025, 3, 1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
}

func TestIsOfferable_RespectsAvailableFlag(t *testing.T) {
	room := singleUnitRoom()
	room.Available = false
	assert.False(t, IsOfferable(room, 1))
}

// ==================== AvailabilityService 测试 ====================

func TestAvailabilityService_CheckRoom(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	room := f.seedRoom(t, "101", 200, 2, 1, true)
	f.seedReservation(t, room.ID, models.ReservationStatusConfirmed, date(2025, 3, 1), date(2025, 3, 5))

	info, err := f.availability.CheckRoom(ctx, room.ID, date(2025, 3, 3), date(2025, 3, 6))
	require.NoError(t, err)
	assert.Equal(t, 0, info.AvailableUnits)
	assert.False(t, info.Offerable)

	info, err = f.availability.CheckRoom(ctx, room.ID, date(2025, 3, 5), date(2025, 3, 8))
	require.NoError(t, err)
	assert.Equal(t, 1, info.AvailableUnits)
	assert.True(t, info.Offerable)
	assert.Equal(t, 3, info.Nights)
	assert.Equal(t, 600.0, info.TotalPrice)
}

func TestAvailabilityService_CheckRoom_Errors(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.availability.CheckRoom(ctx, 999, date(2025, 3, 1), date(2025, 3, 2))
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	_, err = f.availability.CheckRoom(ctx, 1, date(2025, 3, 2), date(2025, 3, 2))
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
}

func TestAvailabilityService_Search(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	free := f.seedRoom(t, "free", 150, 2, 1, true)
	booked := f.seedRoom(t, "booked", 100, 2, 1, true)
	f.seedRoom(t, "closed", 80, 2, 1, false)
	f.seedRoom(t, "small", 60, 1, 1, true)
	f.seedReservation(t, booked.ID, models.ReservationStatusConfirmed, date(2025, 3, 1), date(2025, 3, 5))

	result, err := f.availability.Search(ctx, date(2025, 3, 2), date(2025, 3, 4), 2)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, free.ID, result[0].Room.ID)

	// 同日退房不冲突
	result, err = f.availability.Search(ctx, date(2025, 3, 5), date(2025, 3, 6), 2)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, booked.ID, result[0].Room.ID)
}
