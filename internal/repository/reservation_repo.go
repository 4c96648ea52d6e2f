package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// ActiveReservationStatuses 占用库存的预订状态
var ActiveReservationStatuses = []string{
	models.ReservationStatusConfirmed,
	models.ReservationStatusCheckedIn,
}

// ReservationRepository 预订仓储
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预订仓储
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create 创建预订
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// GetByID 根据 ID 获取预订
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// GetByIDWithRoom 根据 ID 获取预订（包含房间信息）
func (r *ReservationRepository) GetByIDWithRoom(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).Preload("Room").Where("id = ?", id).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateStatus 更新预订状态
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除预订
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 获取预订列表
// 支持的过滤条件: status, room_id, email, guest_id, check_in_from, check_in_to, sort, order
func (r *ReservationRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Reservation{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Room").Order(orderClause(filters)).Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// ListAll 获取符合条件的全部预订（不分页）
func (r *ReservationRepository) ListAll(ctx context.Context, filters map[string]interface{}) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Reservation{}), filters)
	err := query.Order(orderClause(filters)).Find(&reservations).Error
	return reservations, err
}

func (r *ReservationRepository) applyFilters(query *gorm.DB, filters map[string]interface{}) *gorm.DB {
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if statuses, ok := filters["statuses"].([]string); ok && len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if roomID, ok := filters["room_id"].(int64); ok && roomID > 0 {
		query = query.Where("room_id = ?", roomID)
	}
	if email, ok := filters["email"].(string); ok && email != "" {
		query = query.Where("email = ?", email)
	}
	if guestID, ok := filters["guest_id"].(string); ok && guestID != "" {
		query = query.Where("guest_id = ?", guestID)
	}
	if from, ok := filters["check_in_from"].(time.Time); ok {
		query = query.Where("check_in_date >= ?", from)
	}
	if to, ok := filters["check_in_to"].(time.Time); ok {
		query = query.Where("check_in_date < ?", to)
	}
	return query
}

// orderClause 排序字段白名单
func orderClause(filters map[string]interface{}) string {
	column := "created_at"
	if sort, ok := filters["sort"].(string); ok && sort == "check_in_date" {
		column = "check_in_date"
	}
	direction := "DESC"
	if order, ok := filters["order"].(string); ok && order == "asc" {
		direction = "ASC"
	}
	return column + " " + direction + ", id ASC"
}

// ListActiveOverlapping 获取与区间 [start, end) 重叠且占用库存的预订
// roomID 为 0 时查询全部房间
func (r *ReservationRepository) ListActiveOverlapping(ctx context.Context, roomID int64, start, end time.Time) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	query := r.db.WithContext(ctx).
		Where("status IN ?", ActiveReservationStatuses).
		Where("check_in_date < ? AND check_out_date > ?", end, start)
	if roomID > 0 {
		query = query.Where("room_id = ?", roomID)
	}
	err := query.Order("check_in_date ASC").Find(&reservations).Error
	return reservations, err
}

// ListByStatus 按状态获取预订，按入住日期升序
func (r *ReservationRepository) ListByStatus(ctx context.Context, statuses ...string) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	query := r.db.WithContext(ctx)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Order("check_in_date ASC, created_at ASC").Find(&reservations).Error
	return reservations, err
}

// CountByRoom 统计房间关联的预订数
func (r *ReservationRepository) CountByRoom(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}

// StatusCount 状态计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountByStatusInRange 统计入住日期在 [start, end) 内的预订状态分布
func (r *ReservationRepository) CountByStatusInRange(ctx context.Context, start, end time.Time) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Reservation{}).
		Select("status, COUNT(*) AS count").
		Where("check_in_date >= ? AND check_in_date < ?", start, end).
		Group("status").
		Order("status ASC").
		Scan(&counts).Error
	return counts, err
}
