package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/repository"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func stay(id, email string, guestID *string, in time.Time) *models.Reservation {
	return &models.Reservation{
		ID:           id,
		GuestID:      guestID,
		FirstName:    "Guest",
		LastName:     id,
		Email:        email,
		RoomID:       1,
		CheckInDate:  in,
		CheckOutDate: in.AddDate(0, 0, 2),
		Status:       models.ReservationStatusCheckedIn,
	}
}

// ==================== AggregateGuests 测试 ====================

func TestAggregateGuests_LatestStayWins(t *testing.T) {
	early := stay("r1", "ada@example.com", nil, date(2025, 1, 10))
	late := stay("r2", "ada@example.com", nil, date(2025, 2, 1))

	for _, input := range [][]*models.Reservation{{early, late}, {late, early}} {
		guests := AggregateGuests(input)
		require.Len(t, guests, 1)
		assert.Equal(t, date(2025, 2, 1), guests[0].CheckIn)
		assert.Equal(t, date(2025, 2, 3), guests[0].CheckOut)
		assert.Equal(t, 2, guests[0].StayCount)
		assert.Len(t, guests[0].Reservations, 2)
	}
}

func TestAggregateGuests_SameDayDoesNotReplace(t *testing.T) {
	first := stay("r1", "ada@example.com", nil, date(2025, 1, 10))
	second := stay("r2", "ada@example.com", nil, date(2025, 1, 10))
	second.Phone = "13900000000"

	guests := AggregateGuests([]*models.Reservation{first, second})
	require.Len(t, guests, 1)
	assert.Equal(t, "r1", guests[0].LastName)
}

func TestAggregateGuests_KeyFallback(t *testing.T) {
	byID := stay("r1", "a@example.com", strPtr("sub-1"), date(2025, 1, 1))
	sameIDOtherEmail := stay("r2", "b@example.com", strPtr("sub-1"), date(2025, 1, 5))
	byEmail := stay("r3", "c@example.com", nil, date(2025, 1, 2))
	anonymous := stay("r4", "", nil, date(2025, 1, 3))
	emptyGuestID := stay("r5", "c@example.com", strPtr(""), date(2025, 1, 4))

	guests := AggregateGuests([]*models.Reservation{byID, byEmail, anonymous, sameIDOtherEmail, emptyGuestID})
	require.Len(t, guests, 3)

	// 输出顺序为首次出现顺序
	assert.Equal(t, "sub-1", guests[0].Key)
	assert.Equal(t, "c@example.com", guests[1].Key)
	assert.Equal(t, "r4", guests[2].Key)

	assert.Equal(t, 2, guests[0].StayCount)
	assert.Equal(t, "b@example.com", guests[0].Email)
	assert.Equal(t, 2, guests[1].StayCount)
}

func TestAggregateGuests_EveryReservationInOneBucket(t *testing.T) {
	input := []*models.Reservation{
		stay("r1", "a@example.com", nil, date(2025, 1, 1)),
		stay("r2", "b@example.com", nil, date(2025, 1, 2)),
		stay("r3", "a@example.com", nil, date(2025, 1, 3)),
		stay("r4", "", nil, date(2025, 1, 4)),
	}
	total := 0
	for _, g := range AggregateGuests(input) {
		total += len(g.Reservations)
	}
	assert.Equal(t, len(input), total)
	assert.Empty(t, AggregateGuests(nil))
}

// ==================== MonthlyCheckins 测试 ====================

func checkInAt(id string, roomID int64, at time.Time) *models.CheckIn {
	return &models.CheckIn{ID: id, RoomID: roomID, CheckInAt: at}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2025, time.February)
	assert.Equal(t, date(2025, 2, 1), start)
	assert.Equal(t, date(2025, 3, 1), end)

	start, end = MonthBounds(2024, time.December)
	assert.Equal(t, date(2024, 12, 1), start)
	assert.Equal(t, date(2025, 1, 1), end)
}

func TestMonthlyCheckins_HalfOpen(t *testing.T) {
	records := []*models.CheckIn{
		checkInAt("a", 1, date(2025, 3, 1)),
		checkInAt("b", 1, date(2025, 3, 31).Add(23*time.Hour)),
		checkInAt("c", 1, date(2025, 4, 1)),
		checkInAt("d", 1, date(2025, 2, 28)),
	}
	got := MonthlyCheckins(records, 2025, time.March)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestMonthlyCheckins_DecemberRollover(t *testing.T) {
	records := []*models.CheckIn{
		checkInAt("dec", 1, date(2024, 12, 31)),
		checkInAt("jan", 1, date(2025, 1, 1)),
	}
	got := MonthlyCheckins(records, 2024, time.December)
	require.Len(t, got, 1)
	assert.Equal(t, "dec", got[0].ID)

	got = MonthlyCheckins(records, 2025, time.January)
	require.Len(t, got, 1)
	assert.Equal(t, "jan", got[0].ID)
}

func TestMonthlyReservations(t *testing.T) {
	rows := []*models.Reservation{
		stay("in", "a@example.com", nil, date(2025, 3, 15)),
		stay("out", "a@example.com", nil, date(2025, 4, 1)),
	}
	got := MonthlyReservations(rows, 2025, time.March)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].ID)
}

// ==================== TotalRevenue 测试 ====================

func TestTotalRevenue(t *testing.T) {
	catalog := []*models.Room{{ID: 1, Price: 120.5}, {ID: 2, Price: 300}}
	rows := []*models.CheckIn{
		checkInAt("a", 1, date(2025, 3, 1)),
		checkInAt("b", 2, date(2025, 3, 2)),
		checkInAt("c", 1, date(2025, 3, 3)),
		checkInAt("orphan", 99, date(2025, 3, 4)),
	}
	assert.InDelta(t, 541.0, TotalRevenue(rows, catalog), 0.001)
	assert.Zero(t, TotalRevenue([]*models.CheckIn{}, catalog))
	assert.Zero(t, TotalRevenue(rows, nil))
}

// ==================== ExportCSV 测试 ====================

func TestExportCSV_Layout(t *testing.T) {
	catalog := []*models.Room{{ID: 1, Name: "Sea View", Price: 199}}
	r1 := stay("r1", "a@example.com", nil, date(2025, 3, 1))
	r1.Phone = "13800138000"
	r2 := stay("r2", "b@example.com", nil, date(2025, 3, 2))
	r2.RoomID = 42

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, []*models.Reservation{r1, r2}, catalog))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{
		"r1", "Guest r1", "a@example.com", "13800138000", "Sea View", "199.00",
		"2025-03-01", "2025-03-03", models.ReservationStatusCheckedIn,
	}, records[1])
	assert.Equal(t, "", records[2][4])
	assert.Equal(t, "", records[2][5])
}

// ==================== Service 测试 ====================

type serviceFixture struct {
	db      *gorm.DB
	service *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	return &serviceFixture{
		db: db,
		service: NewService(
			repository.NewReservationRepository(db),
			repository.NewCheckInRepository(db),
			repository.NewRoomRepository(db),
		),
	}
}

func (f *serviceFixture) room(t *testing.T, name string, price float64) *models.Room {
	room := &models.Room{Name: name, Type: models.RoomTypeStandard, Price: price, Capacity: 2, Available: true}
	require.NoError(t, f.db.Create(room).Error)
	return room
}

func (f *serviceFixture) reservation(t *testing.T, roomID int64, email, status string, in time.Time) *models.Reservation {
	r := &models.Reservation{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		Phone:        "13800138000",
		CheckInDate:  in,
		CheckOutDate: in.AddDate(0, 0, 1),
		Adults:       1,
		Status:       status,
	}
	require.NoError(t, f.db.Create(r).Error)
	return r
}

func TestService_Guests(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	room := f.room(t, "101", 100)
	f.reservation(t, room.ID, "a@example.com", models.ReservationStatusCheckedIn, date(2025, 1, 10))
	f.reservation(t, room.ID, "a@example.com", models.ReservationStatusCheckedIn, date(2025, 2, 1))
	f.reservation(t, room.ID, "b@example.com", models.ReservationStatusPending, date(2025, 2, 5))

	guests, err := f.service.Guests(ctx, "")
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, date(2025, 2, 1), guests[0].CheckIn.UTC())

	guests, err = f.service.Guests(ctx, GuestStatusAll)
	require.NoError(t, err)
	assert.Len(t, guests, 2)

	_, err = f.service.Guests(ctx, "archived")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestService_Monthly(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	cheap := f.room(t, "cheap", 100)
	suite := f.room(t, "suite", 400)

	a := f.reservation(t, cheap.ID, "a@example.com", models.ReservationStatusCheckedIn, date(2025, 3, 2))
	f.reservation(t, suite.ID, "b@example.com", models.ReservationStatusConfirmed, date(2025, 3, 20))
	f.reservation(t, suite.ID, "c@example.com", models.ReservationStatusCancelled, date(2025, 3, 21))
	f.reservation(t, suite.ID, "d@example.com", models.ReservationStatusConfirmed, date(2025, 4, 1))

	require.NoError(t, f.db.Create(&models.CheckIn{
		ID: uuid.NewString(), RoomID: cheap.ID, ReservationID: a.ID, CheckInAt: date(2025, 3, 2).Add(14 * time.Hour),
	}).Error)

	report, err := f.service.Monthly(ctx, 2025, 3)
	require.NoError(t, err)
	assert.Len(t, report.CheckIns, 1)
	assert.Len(t, report.Reservations, 3)
	assert.InDelta(t, 500.0, report.Revenue, 0.001)
	assert.Equal(t, int64(1), report.StatusCounts[models.ReservationStatusCancelled])
	assert.Equal(t, int64(1), report.StatusCounts[models.ReservationStatusConfirmed])

	_, err = f.service.Monthly(ctx, 2025, 13)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestService_ExportReservations(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	room := f.room(t, "101", 100)
	f.reservation(t, room.ID, "a@example.com", models.ReservationStatusConfirmed, date(2025, 3, 2))
	f.reservation(t, room.ID, "b@example.com", models.ReservationStatusPending, date(2025, 3, 1))

	var buf bytes.Buffer
	require.NoError(t, f.service.ExportReservations(ctx, &buf, map[string]interface{}{
		"status": models.ReservationStatusConfirmed,
	}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a@example.com", records[1][2])
	assert.Equal(t, "101", records[1][4])
}
