// Package models 定义数据库模型
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Room 房间模型
type Room struct {
	ID          int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string                      `gorm:"type:varchar(100);not null" json:"name"`
	Type        string                      `gorm:"type:varchar(20);not null;index" json:"type"`
	Price       float64                     `gorm:"type:decimal(10,2);not null" json:"price"`
	Capacity    int                         `gorm:"not null" json:"capacity"`
	Quantity    *int                        `json:"quantity,omitempty"`
	Available   bool                        `gorm:"not null;index" json:"available"`
	Description *string                     `gorm:"type:text" json:"description,omitempty"`
	Amenities   datatypes.JSONSlice[string] `json:"amenities"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// RoomType 房型
const (
	RoomTypeStandard     = "standard"     // 标准间
	RoomTypeDeluxe       = "deluxe"       // 豪华间
	RoomTypeSuite        = "suite"        // 套房
	RoomTypePresidential = "presidential" // 总统套房
)

// RoomTypes 按展示顺序排列的房型
var RoomTypes = []string{RoomTypeStandard, RoomTypeDeluxe, RoomTypeSuite, RoomTypePresidential}

// IsValidRoomType 是否为合法房型
func IsValidRoomType(t string) bool {
	for _, rt := range RoomTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// UnitCount 可售房间数，未设置时为 1
func (r *Room) UnitCount() int {
	if r.Quantity == nil || *r.Quantity < 1 {
		return 1
	}
	return *r.Quantity
}
