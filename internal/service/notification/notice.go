// Package notification 提供住客通知分发
package notification

import (
	"context"
	"time"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// Notice 住客通知内容
type Notice struct {
	ToEmail       string    `json:"to_email"`
	ToName        string    `json:"to_name"`
	ToPhone       string    `json:"to_phone,omitempty"`
	ReservationID string    `json:"reservation_id"`
	Status        string    `json:"status"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	// From 发起人邮箱
	From string `json:"from,omitempty"`
}

// NewNotice 根据预订构建通知
func NewNotice(r *models.Reservation, from string) Notice {
	return Notice{
		ToEmail:       r.Email,
		ToName:        r.GuestName(),
		ToPhone:       r.Phone,
		ReservationID: r.ID,
		Status:        r.Status,
		CheckIn:       r.CheckInDate,
		CheckOut:      r.CheckOutDate,
		From:          from,
	}
}

// Notifier 通知发送接口
type Notifier interface {
	Notify(ctx context.Context, notice Notice) error
}

// Channel 单个通知渠道
type Channel interface {
	Name() string
	Send(ctx context.Context, notice Notice) error
}
