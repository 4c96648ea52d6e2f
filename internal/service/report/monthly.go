package report

import (
	"time"

	"github.com/jinzhu/now"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// MonthBounds 返回 [当月一日, 次月一日)，12 月滚动到次年 1 月
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := now.With(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)).BeginningOfMonth()
	return start, start.AddDate(0, 1, 0)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// MonthlyCheckins 过滤入住时间落在指定月份的记录，保持输入顺序
func MonthlyCheckins(records []*models.CheckIn, year int, month time.Month) []*models.CheckIn {
	start, end := MonthBounds(year, month)
	result := make([]*models.CheckIn, 0)
	for _, c := range records {
		if inRange(c.CheckInAt.UTC(), start, end) {
			result = append(result, c)
		}
	}
	return result
}

// MonthlyReservations 过滤入住日期落在指定月份的预订
func MonthlyReservations(reservations []*models.Reservation, year int, month time.Month) []*models.Reservation {
	start, end := MonthBounds(year, month)
	result := make([]*models.Reservation, 0)
	for _, r := range reservations {
		if inRange(r.CheckInDate.UTC(), start, end) {
			result = append(result, r)
		}
	}
	return result
}

// RoomRow 关联房间的记录
type RoomRow interface {
	RoomRef() int64
}

// TotalRevenue 按每条记录关联房间的价格求和，找不到房间的记录计为 0
func TotalRevenue[T RoomRow](rows []T, catalog []*models.Room) float64 {
	prices := make(map[int64]float64, len(catalog))
	for _, room := range catalog {
		prices[room.ID] = room.Price
	}

	var total float64
	for _, row := range rows {
		total += prices[row.RoomRef()]
	}
	return total
}
