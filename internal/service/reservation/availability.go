package reservation

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// NormalizeDate 取日期部分，统一为 UTC 零点
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateRange 校验 [start, end)，退房日必须晚于入住日
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return errors.ErrInvalidDateRange
	}
	return nil
}

// Overlaps 半开区间 [aStart, aEnd) 与 [bStart, bEnd) 是否重叠，同日退房入住不冲突
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConsumesInventory 该状态是否占用库存，待确认和已取消不占用
func ConsumesInventory(status string) bool {
	return status == models.ReservationStatusConfirmed || status == models.ReservationStatusCheckedIn
}

// AvailableUnits 计算房间在 [start, end) 内剩余可售数量
func AvailableUnits(room *models.Room, existing []*models.Reservation, start, end time.Time) (int, error) {
	if err := ValidateRange(start, end); err != nil {
		return 0, err
	}

	reserved := 0
	for _, r := range existing {
		if r.RoomID != room.ID || !ConsumesInventory(r.Status) {
			continue
		}
		if Overlaps(r.CheckInDate, r.CheckOutDate, start, end) {
			reserved++
		}
	}

	units := room.UnitCount() - reserved
	if units < 0 {
		return 0, nil
	}
	return units, nil
}

// IsOfferable 房间是否可向住客展示预订
func IsOfferable(room *models.Room, units int) bool {
	return room.Available && units > 0
}

// AvailabilityInfo 可订信息
type AvailabilityInfo struct {
	Room           *models.Room `json:"room"`
	CheckIn        time.Time    `json:"check_in"`
	CheckOut       time.Time    `json:"check_out"`
	Nights         int          `json:"nights"`
	TotalUnits     int          `json:"total_units"`
	AvailableUnits int          `json:"available_units"`
	Offerable      bool         `json:"offerable"`
	TotalPrice     float64      `json:"total_price"`
}

// Nights 入住晚数
func Nights(start, end time.Time) int {
	return int(NormalizeDate(end).Sub(NormalizeDate(start)).Hours() / 24)
}

func newAvailabilityInfo(room *models.Room, units int, start, end time.Time) *AvailabilityInfo {
	nights := Nights(start, end)
	return &AvailabilityInfo{
		Room:           room,
		CheckIn:        start,
		CheckOut:       end,
		Nights:         nights,
		TotalUnits:     room.UnitCount(),
		AvailableUnits: units,
		Offerable:      IsOfferable(room, units),
		TotalPrice:     room.Price * float64(nights),
	}
}

// AvailabilityService 可订查询服务
type AvailabilityService struct {
	rooms        RoomStore
	reservations ReservationStore
}

// NewAvailabilityService 创建可订查询服务
func NewAvailabilityService(rooms RoomStore, reservations ReservationStore) *AvailabilityService {
	return &AvailabilityService{rooms: rooms, reservations: reservations}
}

// CheckRoom 查询单个房间在日期区间内的可订数量
func (s *AvailabilityService) CheckRoom(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (*AvailabilityInfo, error) {
	start, end := NormalizeDate(checkIn), NormalizeDate(checkOut)
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	existing, err := s.reservations.ListActiveOverlapping(ctx, room.ID, start, end)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	units, err := AvailableUnits(room, existing, start, end)
	if err != nil {
		return nil, err
	}
	return newAvailabilityInfo(room, units, start, end), nil
}

// Search 查询日期区间内可向住客展示的房间，guests 为入住人数
func (s *AvailabilityService) Search(ctx context.Context, checkIn, checkOut time.Time, guests int) ([]*AvailabilityInfo, error) {
	start, end := NormalizeDate(checkIn), NormalizeDate(checkOut)
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListAvailable(ctx, guests)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	existing, err := s.reservations.ListActiveOverlapping(ctx, 0, start, end)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	result := make([]*AvailabilityInfo, 0, len(rooms))
	for _, room := range rooms {
		units, err := AvailableUnits(room, existing, start, end)
		if err != nil {
			return nil, err
		}
		if IsOfferable(room, units) {
			result = append(result, newAvailabilityInfo(room, units, start, end))
		}
	}
	return result, nil
}
