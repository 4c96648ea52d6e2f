// Package report 提供住客聚合、月度统计与导出
package report

import (
	"time"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// DerivedGuest 由预订聚合出的住客
type DerivedGuest struct {
	Key          string                `json:"key"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone"`
	RoomID       int64                 `json:"room_id"`
	CheckIn      time.Time             `json:"check_in"`
	CheckOut     time.Time             `json:"check_out"`
	StayCount    int                   `json:"stay_count"`
	Reservations []*models.Reservation `json:"reservations"`
}

// GuestKey 住客标识：稳定 ID 优先，其次邮箱，最后退化为预订 ID
func GuestKey(r *models.Reservation) string {
	if r.GuestID != nil && *r.GuestID != "" {
		return *r.GuestID
	}
	if r.Email != "" {
		return r.Email
	}
	return r.ID
}

// AggregateGuests 按住客标识分组，输出顺序为标识首次出现的顺序
// 入住日期严格更晚的预订才会替换展示的住宿区间和联系信息，不做状态过滤
func AggregateGuests(reservations []*models.Reservation) []*DerivedGuest {
	index := make(map[string]*DerivedGuest, len(reservations))
	guests := make([]*DerivedGuest, 0, len(reservations))

	for _, r := range reservations {
		key := GuestKey(r)
		g, ok := index[key]
		if !ok {
			g = &DerivedGuest{Key: key}
			g.display(r)
			index[key] = g
			guests = append(guests, g)
		} else if r.CheckInDate.After(g.CheckIn) {
			g.display(r)
		}
		g.Reservations = append(g.Reservations, r)
		g.StayCount = len(g.Reservations)
	}
	return guests
}

func (g *DerivedGuest) display(r *models.Reservation) {
	g.FirstName = r.FirstName
	g.LastName = r.LastName
	g.Email = r.Email
	g.Phone = r.Phone
	g.RoomID = r.RoomID
	g.CheckIn = r.CheckInDate
	g.CheckOut = r.CheckOutDate
}
