package reservation

import (
	"context"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// StepState 步骤状态
type StepState string

const (
	StepPending     StepState = "pending"
	StepDone        StepState = "done"
	StepFailed      StepState = "failed"
	StepSkipped     StepState = "skipped"
	StepCompensated StepState = "compensated"
)

// 步骤名称
const (
	StepPersistStatus = "persist_status"
	StepCreateRecord  = "create_reservation"
	StepOccupyRoom    = "occupy_room"
	StepReleaseRoom   = "release_room"
	StepCloseCheckIn  = "close_checkin"
	StepRecordCheckIn = "record_checkin"
)

type sagaStep struct {
	name       string
	action     func(ctx context.Context) error
	compensate func(ctx context.Context) error
	state      StepState
	err        error
}

// Saga 按固定顺序执行的一组独立写操作，记录每一步的结果
type Saga struct {
	steps      []*sagaStep
	compensate bool
	failed     *sagaStep
}

// NewSaga 创建 Saga，compensate 为 true 时失败后逆序回滚已完成步骤
func NewSaga(compensate bool) *Saga {
	return &Saga{compensate: compensate}
}

// Add 追加步骤，compensate 可为 nil
func (s *Saga) Add(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, &sagaStep{
		name:       name,
		action:     action,
		compensate: compensate,
		state:      StepPending,
	})
}

// Run 依次执行步骤，遇到失败即停止，返回失败步骤的错误
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.action(ctx); err != nil {
			step.state = StepFailed
			step.err = err
			s.failed = step
			for _, rest := range s.steps[i+1:] {
				rest.state = StepSkipped
			}
			if s.compensate {
				s.rollback(ctx, i)
			}
			return err
		}
		step.state = StepDone
	}
	return nil
}

// rollback 逆序回滚 failedIdx 之前已完成的步骤
func (s *Saga) rollback(ctx context.Context, failedIdx int) {
	for i := failedIdx - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.state != StepDone {
			continue
		}
		if step.compensate == nil {
			step.state = StepCompensated
			continue
		}
		if err := step.compensate(ctx); err != nil {
			// 回滚失败的步骤保持 done，结果按部分提交处理
			logger.Error("回滚步骤失败", logger.Step(step.name), logger.Err(err))
			continue
		}
		step.state = StepCompensated
	}
}

// Err 失败步骤的错误
func (s *Saga) Err() error {
	if s.failed == nil {
		return nil
	}
	return s.failed.err
}

// FailedStep 失败步骤名
func (s *Saga) FailedStep() string {
	if s.failed == nil {
		return ""
	}
	return s.failed.name
}

// Committed 是否有已提交且未回滚的步骤
func (s *Saga) Committed() bool {
	for _, step := range s.steps {
		if step.state == StepDone {
			return true
		}
	}
	return false
}

// Completed 指定步骤是否已提交
func (s *Saga) Completed(name string) bool {
	for _, step := range s.steps {
		if step.name == name {
			return step.state == StepDone
		}
	}
	return false
}

// Outcome 执行结果
func (s *Saga) Outcome() string {
	if s.failed == nil {
		return models.TransitionOutcomeCompleted
	}
	if s.Committed() {
		return models.TransitionOutcomePartial
	}
	for _, step := range s.steps {
		if step.state == StepCompensated {
			return models.TransitionOutcomeCompensated
		}
	}
	return models.TransitionOutcomeFailed
}

// Records 导出步骤记录
func (s *Saga) Records() []models.StepRecord {
	records := make([]models.StepRecord, 0, len(s.steps))
	for _, step := range s.steps {
		rec := models.StepRecord{Name: step.name, State: string(step.state)}
		if step.err != nil {
			rec.Error = step.err.Error()
		}
		records = append(records, rec)
	}
	return records
}
