package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReservationStatusEvent 预订状态变更记录
type ReservationStatusEvent struct {
	ID            int64                           `gorm:"primaryKey;autoIncrement" json:"id"`
	ReservationID string                          `gorm:"type:varchar(36);not null;index" json:"reservation_id"`
	FromStatus    string                          `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus      string                          `gorm:"type:varchar(20);not null" json:"to_status"`
	Actor         string                          `gorm:"type:varchar(255)" json:"actor"`
	Outcome       string                          `gorm:"type:varchar(20);not null" json:"outcome"`
	Steps         datatypes.JSONSlice[StepRecord] `json:"steps"`
	CreatedAt     time.Time                       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (ReservationStatusEvent) TableName() string {
	return "reservation_status_events"
}

// StepRecord 流转步骤记录
type StepRecord struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// TransitionOutcome 流转结果
const (
	TransitionOutcomeCompleted   = "completed"   // 全部步骤成功
	TransitionOutcomePartial     = "partial"     // 部分步骤已提交
	TransitionOutcomeCompensated = "compensated" // 失败后已回滚
	TransitionOutcomeFailed      = "failed"      // 首个步骤即失败，未写入任何数据
)
