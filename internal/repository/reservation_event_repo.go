package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// ReservationEventRepository 预订状态变更记录仓储
type ReservationEventRepository struct {
	db *gorm.DB
}

// NewReservationEventRepository 创建状态变更记录仓储
func NewReservationEventRepository(db *gorm.DB) *ReservationEventRepository {
	return &ReservationEventRepository{db: db}
}

// Create 写入变更记录
func (r *ReservationEventRepository) Create(ctx context.Context, event *models.ReservationStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByReservation 获取预订的变更记录，按时间升序
func (r *ReservationEventRepository) ListByReservation(ctx context.Context, reservationID string) ([]*models.ReservationStatusEvent, error) {
	var events []*models.ReservationStatusEvent
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
