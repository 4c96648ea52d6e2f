package reservation

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/qrcode"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/tracing"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/validation"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// DateLayout 请求中的日期格式
const DateLayout = "2006-01-02"

// 预订来源
const (
	SourceGuest  = "guest"
	SourceWalkIn = "walk_in"
)

// CreateReservationRequest 预订请求
type CreateReservationRequest struct {
	RoomID          int64  `json:"room_id" validate:"required,gt=0"`
	FirstName       string `json:"first_name" validate:"required,max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Phone           string `json:"phone" validate:"required,max=32"`
	CheckInDate     string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	Adults          int    `json:"adults" validate:"gte=1,lte=20"`
	Children        int    `json:"children" validate:"gte=0,lte=20"`
	SpecialRequests string `json:"special_requests" validate:"max=1000"`
}

// Validate 校验请求并构建预订，任何写入之前调用
func (req *CreateReservationRequest) Validate() (*models.Reservation, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := validation.Get().Struct(req); err != nil {
		return nil, validationError(err)
	}

	checkIn, _ := time.Parse(DateLayout, req.CheckInDate)
	checkOut, _ := time.Parse(DateLayout, req.CheckOutDate)
	checkIn, checkOut = NormalizeDate(checkIn), NormalizeDate(checkOut)
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	r := &models.Reservation{
		RoomID:       req.RoomID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Adults:       req.Adults,
		Children:     req.Children,
	}
	if s := strings.TrimSpace(req.SpecialRequests); s != "" {
		r.SpecialRequests = &s
	}
	return r, nil
}

// validationError 将校验错误映射为业务错误
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return validation.ToAppError(err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "first_name", "last_name", "phone":
		if fe.Tag() == "required" {
			return errors.ErrGuestInfoRequired.WithMessage("缺少住客信息: " + fe.Field())
		}
	case "email":
		if fe.Tag() == "required" {
			return errors.ErrGuestInfoRequired.WithMessage("缺少住客信息: email")
		}
		return errors.ErrInvalidParams.WithMessage("邮箱格式错误")
	case "check_in_date", "check_out_date":
		return errors.ErrInvalidDateRange.WithMessage("日期格式应为 YYYY-MM-DD")
	}
	return validation.ToAppError(err)
}

// ListFilter 预订列表过滤条件
type ListFilter struct {
	Status      string
	RoomID      int64
	Email       string
	CheckInFrom *time.Time
	CheckInTo   *time.Time
	Sort        string // created_at | check_in_date
	Order       string // asc | desc
}

func (f *ListFilter) toMap() map[string]interface{} {
	filters := map[string]interface{}{
		"status":  f.Status,
		"room_id": f.RoomID,
		"email":   strings.ToLower(f.Email),
		"sort":    f.Sort,
		"order":   f.Order,
	}
	if f.CheckInFrom != nil {
		filters["check_in_from"] = NormalizeDate(*f.CheckInFrom)
	}
	if f.CheckInTo != nil {
		filters["check_in_to"] = NormalizeDate(*f.CheckInTo)
	}
	return filters
}

// DeleteResult 删除结果
type DeleteResult struct {
	ReservationID string              `json:"reservation_id"`
	Cascaded      bool                `json:"cascaded"`
	RoomReleased  bool                `json:"room_released"`
	Steps         []models.StepRecord `json:"steps"`
}

// 删除相关步骤
const (
	StepDeleteReservation = "delete_reservation"
	StepRemoveCheckIn     = "remove_checkin"
)

// BookingService 预订服务
type BookingService struct {
	rooms        RoomStore
	reservations ReservationStore
	checkIns     CheckInStore
	lifecycle    *LifecycleService
	board        BoardNotifier
	qr           *qrcode.Generator
}

// NewBookingService 创建预订服务
func NewBookingService(
	rooms RoomStore,
	reservations ReservationStore,
	checkIns CheckInStore,
	lifecycle *LifecycleService,
	board BoardNotifier,
) *BookingService {
	return &BookingService{
		rooms:        rooms,
		reservations: reservations,
		checkIns:     checkIns,
		lifecycle:    lifecycle,
		board:        board,
		qr:           qrcode.NewGenerator(qrcode.WithSize(256), qrcode.WithRecoveryLevel(qrcode.RecoveryMedium)),
	}
}

// checkBookable 校验人数与可订数量，拒绝发生在写入之前
func (s *BookingService) checkBookable(ctx context.Context, r *models.Reservation, source string) error {
	room, err := s.rooms.GetByID(ctx, r.RoomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrRoomNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	if r.GuestCount() > room.Capacity {
		metrics.GetMetrics().RecordBooking(source, "too_many_guests")
		return errors.ErrTooManyGuests.WithMessage(fmt.Sprintf("该房间最多入住 %d 人", room.Capacity))
	}

	existing, err := s.reservations.ListActiveOverlapping(ctx, room.ID, r.CheckInDate, r.CheckOutDate)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	units, err := AvailableUnits(room, existing, r.CheckInDate, r.CheckOutDate)
	if err != nil {
		return err
	}
	if !IsOfferable(room, units) {
		metrics.GetMetrics().RecordBooking(source, "no_availability")
		return errors.ErrNoRoomAvailable
	}
	return nil
}

// CreateReservation 住客自助预订，创建后为待确认状态
func (s *BookingService) CreateReservation(ctx context.Context, sess *session.Session, req *CreateReservationRequest) (*models.Reservation, error) {
	ctx, span := tracing.StartSpan(ctx, "reservation.create",
		tracing.WithSource(SourceGuest),
		tracing.WithRoomID(req.RoomID),
	)
	defer span.End()

	r, err := req.Validate()
	if err != nil {
		metrics.GetMetrics().RecordBooking(SourceGuest, "invalid")
		return nil, err
	}
	if err := s.checkBookable(ctx, r, SourceGuest); err != nil {
		return nil, err
	}

	r.ID = uuid.NewString()
	r.Status = models.ReservationStatusPending
	r.GuestID = sess.GuestID()

	if err := s.reservations.Create(ctx, r); err != nil {
		tracing.SetError(ctx, err)
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordBooking(SourceGuest, "created")
	logger.Info("新预订",
		logger.ReservationID(r.ID),
		logger.RoomID(r.RoomID),
		logger.String("check_in", r.CheckInDate.Format(DateLayout)),
		logger.String("check_out", r.CheckOutDate.Format(DateLayout)),
	)
	return r, nil
}

// RegisterWalkIn 前台登记，直接创建已入住的预订并执行入住副作用
func (s *BookingService) RegisterWalkIn(ctx context.Context, sess *session.Session, req *CreateReservationRequest) (*TransitionResult, error) {
	if !sess.IsAdmin {
		return nil, errors.ErrPermissionDenied
	}
	r, err := req.Validate()
	if err != nil {
		metrics.GetMetrics().RecordBooking(SourceWalkIn, "invalid")
		return nil, err
	}
	if err := s.checkBookable(ctx, r, SourceWalkIn); err != nil {
		return nil, err
	}

	r.ID = uuid.NewString()
	result, err := s.lifecycle.admit(ctx, sess, r)
	if err == nil {
		metrics.GetMetrics().RecordBooking(SourceWalkIn, "created")
	}
	return result, err
}

// DeleteReservation 删除预订，不可恢复
// 未开启级联时不会释放房间和关闭入住记录，需管理员另行处理
func (s *BookingService) DeleteReservation(ctx context.Context, sess *session.Session, id string) (*DeleteResult, error) {
	if !sess.IsAdmin {
		return nil, errors.ErrPermissionDenied
	}

	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	opts := s.lifecycle.Options()
	saga := NewSaga(opts.CompensateOnFailure)
	snapshot := *r
	saga.Add(StepDeleteReservation,
		func(ctx context.Context) error { return s.reservations.Delete(ctx, r.ID) },
		func(ctx context.Context) error { return s.reservations.Create(ctx, &snapshot) },
	)

	result := &DeleteResult{ReservationID: r.ID, Cascaded: opts.CascadeOnDelete}
	if opts.CascadeOnDelete {
		if err := s.addDeleteCascade(ctx, saga, r, result); err != nil {
			return nil, err
		}
	}

	runErr := saga.Run(ctx)
	result.Steps = saga.Records()
	result.RoomReleased = saga.Completed(StepReleaseRoom)

	if saga.Committed() && opts.CascadeOnDelete && s.board != nil {
		s.board.RoomChanged(ctx, r.RoomID)
	}

	if runErr != nil {
		logger.Error("删除预订失败", logger.ReservationID(r.ID), logger.Step(saga.FailedStep()), logger.Err(runErr))
		if saga.Outcome() == models.TransitionOutcomePartial {
			return result, errors.ErrTransitionPartial.WithError(runErr)
		}
		return result, errors.ErrDatabaseError.WithError(runErr)
	}

	logger.Info("预订已删除",
		logger.ReservationID(r.ID),
		logger.Status(r.Status),
		logger.Actor(sess.Actor()),
		logger.Bool("cascade", opts.CascadeOnDelete),
	)
	return result, nil
}

// addDeleteCascade 删除时移除未退房的入住记录，已入住的预订同时释放房间
func (s *BookingService) addDeleteCascade(ctx context.Context, saga *Saga, r *models.Reservation, result *DeleteResult) error {
	record, err := s.checkIns.GetByReservationID(ctx, r.ID)
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrDatabaseError.WithError(err)
	}
	if err == nil && record.IsOpen() {
		snapshot := *record
		saga.Add(StepRemoveCheckIn,
			func(ctx context.Context) error { return s.checkIns.Delete(ctx, snapshot.ID) },
			func(ctx context.Context) error { return s.checkIns.Create(ctx, &snapshot) },
		)
	}

	if r.Status != models.ReservationStatusCheckedIn {
		return nil
	}
	room, err := s.rooms.GetByID(ctx, r.RoomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	wasAvailable := room.Available
	saga.Add(StepReleaseRoom,
		func(ctx context.Context) error { return s.rooms.SetAvailable(ctx, room.ID, true) },
		func(ctx context.Context) error { return s.rooms.SetAvailable(ctx, room.ID, wasAvailable) },
	)
	return nil
}

// Get 获取预订详情
func (s *BookingService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.reservations.GetByIDWithRoom(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return r, nil
}

// List 分页查询预订
func (s *BookingService) List(ctx context.Context, filter *ListFilter, offset, limit int) ([]*models.Reservation, int64, error) {
	if filter == nil {
		filter = &ListFilter{}
	}
	if filter.Status != "" && !models.IsValidReservationStatus(filter.Status) {
		return nil, 0, errors.ErrInvalidStatus
	}
	list, total, err := s.reservations.List(ctx, offset, limit, filter.toMap())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// ConfirmationQRCode 生成预订确认二维码（PNG），前台扫码查询预订
func (s *BookingService) ConfirmationQRCode(ctx context.Context, id string) ([]byte, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrReservationNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	png, err := s.qr.GeneratePNG(ConfirmationPayload(r.ID))
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return png, nil
}

// ConfirmationPayload 二维码内容
func ConfirmationPayload(id string) string {
	return "hotel-reservation:" + id
}
