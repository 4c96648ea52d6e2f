package models

import (
	"strings"
	"time"
)

// Reservation 预订模型
type Reservation struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RoomID          int64     `gorm:"index;not null" json:"room_id"`
	GuestID         *string   `gorm:"type:varchar(64);index" json:"guest_id,omitempty"`
	FirstName       string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName        string    `gorm:"type:varchar(50);not null" json:"last_name"`
	Email           string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone           string    `gorm:"type:varchar(32);not null" json:"phone"`
	CheckInDate     time.Time `gorm:"type:date;not null;index" json:"check_in_date"`
	CheckOutDate    time.Time `gorm:"type:date;not null" json:"check_out_date"`
	Adults          int       `gorm:"not null" json:"adults"`
	Children        int       `gorm:"not null" json:"children"`
	SpecialRequests *string   `gorm:"type:text" json:"special_requests,omitempty"`
	Status          string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// TableName 表名
func (Reservation) TableName() string {
	return "reservations"
}

// ReservationStatus 预订状态
const (
	ReservationStatusPending    = "pending"     // 待确认
	ReservationStatusConfirmed  = "confirmed"   // 已确认
	ReservationStatusCheckedIn  = "checked-in"  // 已入住
	ReservationStatusCheckedOut = "checked-out" // 已退房
	ReservationStatusCancelled  = "cancelled"   // 已取消
)

// ReservationStatuses 全部预订状态
var ReservationStatuses = []string{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCheckedIn,
	ReservationStatusCheckedOut,
	ReservationStatusCancelled,
}

// IsValidReservationStatus 是否为合法状态
func IsValidReservationStatus(status string) bool {
	for _, s := range ReservationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus 是否为终态
func IsTerminalStatus(status string) bool {
	return status == ReservationStatusCheckedOut || status == ReservationStatusCancelled
}

// GuestName 住客姓名
func (r *Reservation) GuestName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// GuestCount 入住人数
func (r *Reservation) GuestCount() int {
	return r.Adults + r.Children
}

// RoomRef 关联的房间
func (r *Reservation) RoomRef() int64 {
	return r.RoomID
}
