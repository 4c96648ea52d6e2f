package reservation

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/tracing"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/utils"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/service/notification"
)

// Options 生命周期配置
type Options struct {
	Policy              string
	CompensateOnFailure bool
	CascadeOnDelete     bool
}

// OptionsFromConfig 从业务配置读取
func OptionsFromConfig(cfg *config.ReservationConfig) Options {
	return Options{
		Policy:              cfg.TransitionPolicy,
		CompensateOnFailure: cfg.CompensateOnFailure,
		CascadeOnDelete:     cfg.CascadeOnDelete,
	}
}

// forwardTransitions forward_only 策略下允许的流转
var forwardTransitions = map[string][]string{
	models.ReservationStatusPending: {
		models.ReservationStatusConfirmed,
		models.ReservationStatusCheckedIn,
		models.ReservationStatusCancelled,
	},
	models.ReservationStatusConfirmed: {
		models.ReservationStatusCheckedIn,
		models.ReservationStatusCancelled,
	},
	models.ReservationStatusCheckedIn: {
		models.ReservationStatusCheckedOut,
	},
}

// CanTransition 判断策略是否允许 from -> to，重复进入同一状态总是允许
func CanTransition(policy, from, to string) bool {
	if !models.IsValidReservationStatus(to) {
		return false
	}
	if policy != config.TransitionPolicyForwardOnly || from == to {
		return true
	}
	return utils.Contains(forwardTransitions[from], to)
}

// TransitionResult 状态流转结果
type TransitionResult struct {
	Reservation       *models.Reservation `json:"reservation"`
	FromStatus        string              `json:"from_status"`
	ToStatus          string              `json:"to_status"`
	Outcome           string              `json:"outcome"`
	Steps             []models.StepRecord `json:"steps"`
	NotificationError string              `json:"notification_error,omitempty"`
}

// LifecycleService 预订状态机
type LifecycleService struct {
	reservations ReservationStore
	rooms        RoomStore
	checkIns     CheckInStore
	events       EventStore
	notifier     notification.Notifier
	board        BoardNotifier
	opts         Options
	now          func() time.Time
}

// NewLifecycleService 创建状态机服务，board 可为 nil
func NewLifecycleService(
	reservations ReservationStore,
	rooms RoomStore,
	checkIns CheckInStore,
	events EventStore,
	notifier notification.Notifier,
	board BoardNotifier,
	opts Options,
) *LifecycleService {
	return &LifecycleService{
		reservations: reservations,
		rooms:        rooms,
		checkIns:     checkIns,
		events:       events,
		notifier:     notifier,
		board:        board,
		opts:         opts,
		now:          time.Now,
	}
}

// Options 当前配置
func (s *LifecycleService) Options() Options {
	return s.opts
}

// Transition 将预订变更为 newStatus 并依次执行副作用
// 1 写入状态 2 入住时占用房间 3 退房/取消时释放房间并关闭入住记录 4 确认/入住时保证一条入住记录 5 通知住客
func (s *LifecycleService) Transition(ctx context.Context, sess *session.Session, id, newStatus string) (*TransitionResult, error) {
	if !sess.IsAdmin {
		return nil, errors.ErrPermissionDenied
	}
	if !models.IsValidReservationStatus(newStatus) {
		return nil, errors.ErrInvalidStatus.WithMessage(fmt.Sprintf("未知的预订状态: %s", newStatus))
	}

	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	from := r.Status
	if !CanTransition(s.opts.Policy, from, newStatus) {
		return nil, errors.ErrTransitionNotAllowed.WithMessage(fmt.Sprintf("不允许从 %s 变更为 %s", from, newStatus))
	}

	saga := NewSaga(s.opts.CompensateOnFailure)
	saga.Add(StepPersistStatus,
		func(ctx context.Context) error {
			return s.reservations.UpdateStatus(ctx, r.ID, newStatus)
		},
		func(ctx context.Context) error {
			return s.reservations.UpdateStatus(ctx, r.ID, from)
		},
	)
	if err := s.addSideEffects(ctx, saga, r, newStatus); err != nil {
		return nil, err
	}

	return s.execute(ctx, sess, saga, r, from, newStatus)
}

// admit 写入一条已入住的预订并执行入住副作用（前台登记）
func (s *LifecycleService) admit(ctx context.Context, sess *session.Session, r *models.Reservation) (*TransitionResult, error) {
	r.Status = models.ReservationStatusCheckedIn

	saga := NewSaga(s.opts.CompensateOnFailure)
	saga.Add(StepCreateRecord,
		func(ctx context.Context) error {
			return s.reservations.Create(ctx, r)
		},
		func(ctx context.Context) error {
			return s.reservations.Delete(ctx, r.ID)
		},
	)
	if err := s.addSideEffects(ctx, saga, r, models.ReservationStatusCheckedIn); err != nil {
		return nil, err
	}

	return s.execute(ctx, sess, saga, r, "", models.ReservationStatusCheckedIn)
}

// addSideEffects 按目标状态追加步骤 2-4，所有读取和前置校验在写入前完成
func (s *LifecycleService) addSideEffects(ctx context.Context, saga *Saga, r *models.Reservation, to string) error {
	room, err := s.rooms.GetByID(ctx, r.RoomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrRoomNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	wasAvailable := room.Available

	existing, err := s.checkIns.GetByReservationID(ctx, r.ID)
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrDatabaseError.WithError(err)
	}
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		existing = nil
	}

	// 同一房间同时在住的记录数不能超过房间数量
	if to == models.ReservationStatusCheckedIn {
		occupying, err := s.checkIns.CountOccupying(ctx, room.ID, r.ID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if occupying >= int64(room.UnitCount()) {
			return errors.ErrRoomOccupied
		}
	}

	switch to {
	case models.ReservationStatusCheckedIn:
		saga.Add(StepOccupyRoom,
			func(ctx context.Context) error { return s.rooms.SetAvailable(ctx, room.ID, false) },
			func(ctx context.Context) error { return s.rooms.SetAvailable(ctx, room.ID, wasAvailable) },
		)
	case models.ReservationStatusCheckedOut, models.ReservationStatusCancelled:
		saga.Add(StepReleaseRoom,
			func(ctx context.Context) error { return s.rooms.SetAvailable(ctx, room.ID, true) },
			func(ctx context.Context) error { return s.rooms.SetAvailable(ctx, room.ID, wasAvailable) },
		)
		if existing != nil && existing.IsOpen() {
			recordID := existing.ID
			saga.Add(StepCloseCheckIn,
				func(ctx context.Context) error {
					at := s.now()
					return s.checkIns.SetCheckOut(ctx, recordID, &at)
				},
				func(ctx context.Context) error { return s.checkIns.SetCheckOut(ctx, recordID, nil) },
			)
		}
	}

	if to == models.ReservationStatusConfirmed || to == models.ReservationStatusCheckedIn {
		switch {
		case existing == nil:
			record := s.newCheckIn(r, to)
			saga.Add(StepRecordCheckIn,
				func(ctx context.Context) error { return s.checkIns.Create(ctx, record) },
				func(ctx context.Context) error { return s.checkIns.Delete(ctx, record.ID) },
			)
		case !existing.IsOpen() && to == models.ReservationStatusCheckedIn:
			// 已关闭的记录重新入住时重新打开
			recordID, closedAt := existing.ID, existing.CheckOutAt
			saga.Add(StepRecordCheckIn,
				func(ctx context.Context) error { return s.checkIns.SetCheckOut(ctx, recordID, nil) },
				func(ctx context.Context) error { return s.checkIns.SetCheckOut(ctx, recordID, closedAt) },
			)
		}
	}
	return nil
}

// newCheckIn 入住记录，已确认的预订以计划入住日为入住时间
func (s *LifecycleService) newCheckIn(r *models.Reservation, to string) *models.CheckIn {
	at := r.CheckInDate
	if to == models.ReservationStatusCheckedIn {
		at = s.now().UTC()
	}
	name := r.GuestName()
	return &models.CheckIn{
		ID:            uuid.NewString(),
		RoomID:        r.RoomID,
		ReservationID: r.ID,
		GuestName:     &name,
		CheckInAt:     at,
	}
}

// execute 执行 Saga，记录审计，状态有变化时推送房态，并通知住客
func (s *LifecycleService) execute(ctx context.Context, sess *session.Session, saga *Saga, r *models.Reservation, from, to string) (*TransitionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "reservation.transition",
		tracing.WithReservationID(r.ID),
		tracing.WithRoomID(r.RoomID),
		tracing.WithStatus(to),
	)
	defer span.End()

	started := s.now()
	runErr := saga.Run(ctx)
	outcome := saga.Outcome()

	result := &TransitionResult{
		Reservation: r,
		FromStatus:  from,
		ToStatus:    to,
		Outcome:     outcome,
		Steps:       saga.Records(),
	}
	if latest, err := s.reservations.GetByID(ctx, r.ID); err == nil {
		result.Reservation = latest
	}

	s.recordEvent(ctx, sess, result)

	changed := outcome == models.TransitionOutcomeCompleted || outcome == models.TransitionOutcomePartial
	if changed && s.board != nil {
		s.board.RoomChanged(ctx, r.RoomID)
	}

	// 无论各步骤结果如何都尝试通知住客，通知失败不回滚
	if s.notifier != nil {
		notice := notification.NewNotice(r, sess.Actor())
		notice.Status = to
		if err := s.notifier.Notify(ctx, notice); err != nil {
			result.NotificationError = err.Error()
		}
	}

	metrics.GetMetrics().RecordTransition(to, outcome, s.now().Sub(started))

	if runErr != nil {
		tracing.SetError(ctx, runErr)
		logger.Error("预订状态变更失败",
			logger.ReservationID(r.ID),
			logger.Status(to),
			logger.Actor(sess.Actor()),
			logger.Step(saga.FailedStep()),
			logger.String("outcome", outcome),
			logger.Err(runErr),
		)
		if outcome == models.TransitionOutcomePartial {
			return result, errors.ErrTransitionPartial.WithError(runErr)
		}
		if appErr, ok := runErr.(*errors.AppError); ok {
			return result, appErr
		}
		return result, errors.ErrDatabaseError.WithError(runErr)
	}

	logger.Info("预订状态已变更",
		logger.ReservationID(r.ID),
		logger.RoomID(r.RoomID),
		logger.String("from", from),
		logger.Status(to),
		logger.Actor(sess.Actor()),
	)
	return result, nil
}

// recordEvent 写入审计记录，失败只记日志
func (s *LifecycleService) recordEvent(ctx context.Context, sess *session.Session, result *TransitionResult) {
	if s.events == nil {
		return
	}
	event := &models.ReservationStatusEvent{
		ReservationID: result.Reservation.ID,
		FromStatus:    result.FromStatus,
		ToStatus:      result.ToStatus,
		Actor:         sess.Actor(),
		Outcome:       result.Outcome,
		Steps:         result.Steps,
	}
	if err := s.events.Create(ctx, event); err != nil {
		logger.Warn("写入状态变更记录失败", logger.ReservationID(event.ReservationID), logger.Err(err))
	}
}

// History 预订的状态变更记录
func (s *LifecycleService) History(ctx context.Context, reservationID string) ([]*models.ReservationStatusEvent, error) {
	events, err := s.events.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return events, nil
}
