package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/repository"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/service/notification"
)

var errInjected = errors.New("injected failure")

const adminEmail = "admin@hotel.local"

func adminSession() *session.Session {
	return session.New("admin-sub", adminEmail, adminEmail)
}

func guestSession() *session.Session {
	return session.New("guest-sub", "ada@example.com", adminEmail)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mockNotifier 记录通知
type mockNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
	err     error
}

func (m *mockNotifier) Notify(ctx context.Context, notice notification.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, notice)
	return m.err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notices)
}

// mockBoard 记录房态变化
type mockBoard struct {
	mu    sync.Mutex
	rooms []int64
}

func (m *mockBoard) RoomChanged(ctx context.Context, roomID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = append(m.rooms, roomID)
}

func (m *mockBoard) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// flakyReservations 可注入失败的预订存储
type flakyReservations struct {
	*repository.ReservationRepository
	failUpdateStatus error
	wrapErrors       bool
}

func (f *flakyReservations) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := f.ReservationRepository.GetByID(ctx, id)
	if err != nil && f.wrapErrors {
		return nil, fmt.Errorf("load reservation %s: %w", id, err)
	}
	return r, err
}

func (f *flakyReservations) UpdateStatus(ctx context.Context, id string, status string) error {
	if f.failUpdateStatus != nil {
		return f.failUpdateStatus
	}
	return f.ReservationRepository.UpdateStatus(ctx, id, status)
}

// flakyCheckIns 可注入失败的入住记录存储
type flakyCheckIns struct {
	*repository.CheckInRepository
	failCreate error
	failDelete error
	wrapErrors bool
}

func (f *flakyCheckIns) GetByReservationID(ctx context.Context, reservationID string) (*models.CheckIn, error) {
	record, err := f.CheckInRepository.GetByReservationID(ctx, reservationID)
	if err != nil && f.wrapErrors {
		return nil, fmt.Errorf("load check-in %s: %w", reservationID, err)
	}
	return record, err
}

func (f *flakyCheckIns) Create(ctx context.Context, checkIn *models.CheckIn) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	return f.CheckInRepository.Create(ctx, checkIn)
}

func (f *flakyCheckIns) Delete(ctx context.Context, id string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	return f.CheckInRepository.Delete(ctx, id)
}

type fixture struct {
	db           *gorm.DB
	rooms        *repository.RoomRepository
	reservations *flakyReservations
	checkIns     *flakyCheckIns
	events       *repository.ReservationEventRepository
	notifier     *mockNotifier
	board        *mockBoard
	lifecycle    *LifecycleService
	booking      *BookingService
	availability *AvailabilityService
}

func newFixture(t *testing.T, opts Options) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	f := &fixture{
		db:           db,
		rooms:        repository.NewRoomRepository(db),
		reservations: &flakyReservations{ReservationRepository: repository.NewReservationRepository(db)},
		checkIns:     &flakyCheckIns{CheckInRepository: repository.NewCheckInRepository(db)},
		events:       repository.NewReservationEventRepository(db),
		notifier:     &mockNotifier{},
		board:        &mockBoard{},
	}
	f.lifecycle = NewLifecycleService(f.reservations, f.rooms, f.checkIns, f.events, f.notifier, f.board, opts)
	f.booking = NewBookingService(f.rooms, f.reservations, f.checkIns, f.lifecycle, f.board)
	f.availability = NewAvailabilityService(f.rooms, f.reservations)
	return f
}

func (f *fixture) seedRoom(t *testing.T, name string, price float64, capacity, quantity int, available bool) *models.Room {
	room := &models.Room{
		Name:      name,
		Type:      models.RoomTypeStandard,
		Price:     price,
		Capacity:  capacity,
		Quantity:  &quantity,
		Available: available,
	}
	require.NoError(t, f.db.Create(room).Error)
	return room
}

func (f *fixture) seedReservation(t *testing.T, roomID int64, status string, in, out time.Time) *models.Reservation {
	r := &models.Reservation{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        "13800138000",
		CheckInDate:  in,
		CheckOutDate: out,
		Adults:       1,
		Status:       status,
	}
	require.NoError(t, f.db.Create(r).Error)
	return r
}

func (f *fixture) reload(t *testing.T, id string) *models.Reservation {
	var r models.Reservation
	require.NoError(t, f.db.First(&r, "id = ?", id).Error)
	return &r
}

func (f *fixture) roomAvailable(t *testing.T, id int64) bool {
	var room models.Room
	require.NoError(t, f.db.First(&room, id).Error)
	return room.Available
}

func (f *fixture) checkInCount(t *testing.T, reservationID string) int64 {
	var n int64
	require.NoError(t, f.db.Model(&models.CheckIn{}).Where("reservation_id = ?", reservationID).Count(&n).Error)
	return n
}

func (f *fixture) checkIn(t *testing.T, reservationID string) *models.CheckIn {
	var record models.CheckIn
	require.NoError(t, f.db.First(&record, "reservation_id = ?", reservationID).Error)
	return &record
}

func bookingRequest(roomID int64, in, out string) *CreateReservationRequest {
	return &CreateReservationRequest{
		RoomID:       roomID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "Ada@Example.com",
		Phone:        "13800138000",
		CheckInDate:  in,
		CheckOutDate: out,
		Adults:       2,
	}
}
