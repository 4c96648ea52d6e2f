package report

import (
	"context"
	"io"
	"time"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/utils"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/repository"
)

const dateLayout = "2006-01-02"

// GuestStatusAll 住客列表不按状态过滤
const GuestStatusAll = "all"

// ReservationReader 预订读取
type ReservationReader interface {
	ListAll(ctx context.Context, filters map[string]interface{}) ([]*models.Reservation, error)
	CountByStatusInRange(ctx context.Context, start, end time.Time) ([]repository.StatusCount, error)
}

// CheckInReader 入住记录读取
type CheckInReader interface {
	ListByCheckInRange(ctx context.Context, start, end time.Time) ([]*models.CheckIn, error)
}

// RoomReader 房间目录读取
type RoomReader interface {
	ListAll(ctx context.Context) ([]*models.Room, error)
}

// MonthlyReport 月度报表
type MonthlyReport struct {
	Year         int                   `json:"year"`
	Month        int                   `json:"month"`
	From         time.Time             `json:"from"`
	To           time.Time             `json:"to"`
	CheckIns     []*models.CheckIn     `json:"checkins"`
	Reservations []*models.Reservation `json:"reservations"`
	Revenue      float64               `json:"revenue"`
	StatusCounts map[string]int64      `json:"status_counts"`
}

// revenueStatuses 计入营收的预订状态
var revenueStatuses = []string{
	models.ReservationStatusConfirmed,
	models.ReservationStatusCheckedIn,
	models.ReservationStatusCheckedOut,
}

// Service 报表服务
type Service struct {
	reservations ReservationReader
	checkIns     CheckInReader
	rooms        RoomReader
}

// NewService 创建报表服务
func NewService(reservations ReservationReader, checkIns CheckInReader, rooms RoomReader) *Service {
	return &Service{reservations: reservations, checkIns: checkIns, rooms: rooms}
}

// Guests 聚合住客列表，status 为空时默认只看在住预订
func (s *Service) Guests(ctx context.Context, status string) ([]*DerivedGuest, error) {
	if status == "" {
		status = models.ReservationStatusCheckedIn
	}
	filters := map[string]interface{}{"sort": "check_in_date", "order": "asc"}
	if status != GuestStatusAll {
		if !models.IsValidReservationStatus(status) {
			return nil, errors.ErrInvalidStatus
		}
		filters["status"] = status
	}

	reservations, err := s.reservations.ListAll(ctx, filters)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return AggregateGuests(reservations), nil
}

// Monthly 月度报表：当月入住记录、入住日期在当月的预订、营收与状态分布
func (s *Service) Monthly(ctx context.Context, year, month int) (*MonthlyReport, error) {
	if month < 1 || month > 12 || year < 1970 {
		return nil, errors.ErrInvalidParams.WithMessage("无效的年份或月份")
	}
	start, end := MonthBounds(year, time.Month(month))

	records, err := s.checkIns.ListByCheckInRange(ctx, start, end)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	reservations, err := s.reservations.ListAll(ctx, map[string]interface{}{
		"check_in_from": start,
		"check_in_to":   end,
		"sort":          "check_in_date",
		"order":         "asc",
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	catalog, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	counts, err := s.reservations.CountByStatusInRange(ctx, start, end)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	report := &MonthlyReport{
		Year:         year,
		Month:        month,
		From:         start,
		To:           end,
		CheckIns:     MonthlyCheckins(records, year, time.Month(month)),
		Reservations: MonthlyReservations(reservations, year, time.Month(month)),
		StatusCounts: make(map[string]int64, len(counts)),
	}
	for _, c := range counts {
		report.StatusCounts[c.Status] = c.Count
	}

	billable := make([]*models.Reservation, 0, len(report.Reservations))
	for _, r := range report.Reservations {
		if utils.Contains(revenueStatuses, r.Status) {
			billable = append(billable, r)
		}
	}
	report.Revenue = TotalRevenue(billable, catalog)
	return report, nil
}

// ExportReservations 按过滤条件导出 CSV
func (s *Service) ExportReservations(ctx context.Context, w io.Writer, filters map[string]interface{}) error {
	if filters == nil {
		filters = map[string]interface{}{}
	}
	if _, ok := filters["sort"]; !ok {
		filters["sort"] = "check_in_date"
		filters["order"] = "asc"
	}

	rows, err := s.reservations.ListAll(ctx, filters)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	catalog, err := s.rooms.ListAll(ctx)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if err := ExportCSV(w, rows, catalog); err != nil {
		return errors.ErrInternalError.WithError(err)
	}
	return nil
}
