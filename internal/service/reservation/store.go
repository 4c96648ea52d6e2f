// Package reservation 提供可订检查、预订创建与状态流转
package reservation

import (
	"context"
	"time"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// RoomStore 房间存储
type RoomStore interface {
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	ListAvailable(ctx context.Context, minCapacity int) ([]*models.Room, error)
	SetAvailable(ctx context.Context, id int64, available bool) error
}

// ReservationStore 预订存储
type ReservationStore interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	GetByIDWithRoom(ctx context.Context, id string) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Reservation, int64, error)
	ListActiveOverlapping(ctx context.Context, roomID int64, start, end time.Time) ([]*models.Reservation, error)
}

// CheckInStore 入住登记存储
type CheckInStore interface {
	Create(ctx context.Context, checkIn *models.CheckIn) error
	GetByReservationID(ctx context.Context, reservationID string) (*models.CheckIn, error)
	CountOccupying(ctx context.Context, roomID int64, excludeReservationID string) (int64, error)
	SetCheckOut(ctx context.Context, id string, at *time.Time) error
	Delete(ctx context.Context, id string) error
}

// EventStore 状态变更记录存储
type EventStore interface {
	Create(ctx context.Context, event *models.ReservationStatusEvent) error
	ListByReservation(ctx context.Context, reservationID string) ([]*models.ReservationStatusEvent, error)
}

// BoardNotifier 房态变化通知
type BoardNotifier interface {
	RoomChanged(ctx context.Context, roomID int64)
}
