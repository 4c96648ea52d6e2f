package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(models.All()...)
	require.NoError(t, err)

	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedRoom(t *testing.T, db *gorm.DB, name, roomType string, price float64, capacity int, available bool) *models.Room {
	room := &models.Room{
		Name:      name,
		Type:      roomType,
		Price:     price,
		Capacity:  capacity,
		Available: available,
		Amenities: []string{"wifi"},
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func seedReservation(t *testing.T, db *gorm.DB, roomID int64, email, status string, in, out time.Time) *models.Reservation {
	reservation := &models.Reservation{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		Phone:        "13800138000",
		CheckInDate:  in,
		CheckOutDate: out,
		Adults:       1,
		Status:       status,
	}
	require.NoError(t, db.Create(reservation).Error)
	return reservation
}
