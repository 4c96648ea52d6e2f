package models

import (
	"time"
)

// CheckIn 入住登记记录
type CheckIn struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	RoomID        int64      `gorm:"index;not null" json:"room_id"`
	ReservationID string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"reservation_id"`
	GuestName     *string    `gorm:"type:varchar(100)" json:"guest_name,omitempty"`
	CheckInAt     time.Time  `gorm:"not null;index" json:"check_in_at"`
	CheckOutAt    *time.Time `gorm:"index" json:"check_out_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (CheckIn) TableName() string {
	return "checkins"
}

// IsOpen 是否仍在住
func (c *CheckIn) IsOpen() bool {
	return c.CheckOutAt == nil
}

// RoomRef 关联的房间
func (c *CheckIn) RoomRef() int64 {
	return c.RoomID
}
