package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// CheckInRepository 入住登记仓储
type CheckInRepository struct {
	db *gorm.DB
}

// NewCheckInRepository 创建入住登记仓储
func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Create 创建入住记录
func (r *CheckInRepository) Create(ctx context.Context, checkIn *models.CheckIn) error {
	return r.db.WithContext(ctx).Create(checkIn).Error
}

// GetByReservationID 根据预订 ID 获取入住记录
func (r *CheckInRepository) GetByReservationID(ctx context.Context, reservationID string) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&checkIn).Error
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// occupying 未退房且预订仍为已入住的记录，已确认未到店的记录不算在住
func (r *CheckInRepository) occupying(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CheckIn{}).
		Joins("JOIN reservations ON reservations.id = checkins.reservation_id").
		Where("checkins.check_out_at IS NULL").
		Where("reservations.status = ?", models.ReservationStatusCheckedIn)
}

// ListOpen 获取全部在住记录
func (r *CheckInRepository) ListOpen(ctx context.Context) ([]*models.CheckIn, error) {
	var checkIns []*models.CheckIn
	err := r.occupying(ctx).
		Select("checkins.*").
		Order("checkins.room_id ASC").
		Find(&checkIns).Error
	return checkIns, err
}

// ListByCheckInRange 获取入住时间在 [start, end) 内的记录
func (r *CheckInRepository) ListByCheckInRange(ctx context.Context, start, end time.Time) ([]*models.CheckIn, error) {
	var checkIns []*models.CheckIn
	err := r.db.WithContext(ctx).
		Where("check_in_at >= ? AND check_in_at < ?", start, end).
		Order("check_in_at ASC").
		Find(&checkIns).Error
	return checkIns, err
}

// SetCheckOut 设置退房时间，传 nil 表示重新打开
func (r *CheckInRepository) SetCheckOut(ctx context.Context, id string, at *time.Time) error {
	return r.db.WithContext(ctx).Model(&models.CheckIn{}).Where("id = ?", id).Update("check_out_at", at).Error
}

// Delete 删除入住记录
func (r *CheckInRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CheckIn{}).Error
}

// CountOccupying 统计房间内在住记录数，排除指定预订
func (r *CheckInRepository) CountOccupying(ctx context.Context, roomID int64, excludeReservationID string) (int64, error) {
	var count int64
	err := r.occupying(ctx).
		Where("checkins.room_id = ?", roomID).
		Where("checkins.reservation_id <> ?", excludeReservationID).
		Count(&count).Error
	return count, err
}
