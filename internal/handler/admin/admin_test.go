package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/cache"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/jwt"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/middleware"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/realtime"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/repository"
	boardService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/board"
	reportService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/report"
	reservationService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/reservation"
	roomService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/room"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/oss"
)

const adminEmail = "admin@hotel.local"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pageData struct {
	List  json.RawMessage `json:"list"`
	Total int64           `json:"total"`
}

type adminFixture struct {
	db         *gorm.DB
	router     *gin.Engine
	uploader   *oss.MockUploader
	adminToken string
	guestToken string
}

func setupAdmin(t *testing.T) *adminFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	rooms := repository.NewRoomRepository(db)
	reservations := repository.NewReservationRepository(db)
	checkIns := repository.NewCheckInRepository(db)
	events := repository.NewReservationEventRepository(db)

	hub := realtime.NewHub()
	board := boardService.NewService(rooms, checkIns, hub)
	uploader := oss.NewMockUploader()
	catalog := roomService.NewCatalogService(rooms, reservations, cache.NewStore(nil), uploader, board, roomService.Options{
		UploadDir:    "rooms",
		MaxImageSize: 1 << 20,
	})
	lifecycle := reservationService.NewLifecycleService(reservations, rooms, checkIns, events, nil, board, reservationService.Options{
		Policy:              config.TransitionPolicyForwardOnly,
		CompensateOnFailure: true,
		CascadeOnDelete:     true,
	})
	booking := reservationService.NewBookingService(rooms, reservations, checkIns, lifecycle, board)
	reports := reportService.NewService(reservations, checkIns, rooms)

	manager := jwt.NewManager(&jwt.Config{Secret: "test-secret", Issuer: "hotel-identity", ExpireTime: time.Hour})
	adminToken, _, err := manager.Generate("admin-sub", adminEmail)
	require.NoError(t, err)
	guestToken, _, err := manager.Generate("guest-sub", "guest@example.com")
	require.NoError(t, err)

	roomHandler := NewRoomHandler(catalog)
	reservationHandler := NewReservationHandler(booking, lifecycle)
	reportHandler := NewReportHandler(reports)
	boardHandler := NewBoardHandler(board, hub, 8)

	r := gin.New()
	api := r.Group("/api/admin")
	api.Use(middleware.Identity(&middleware.IdentityConfig{JWTManager: manager, AdminEmail: adminEmail, Required: true}))
	api.Use(middleware.RequireAdmin())
	{
		api.GET("/rooms", roomHandler.ListRooms)
		api.POST("/rooms", roomHandler.CreateRoom)
		api.GET("/rooms/:id", roomHandler.GetRoom)
		api.PUT("/rooms/:id", roomHandler.UpdateRoom)
		api.PATCH("/rooms/:id/availability", roomHandler.SetAvailability)
		api.POST("/rooms/:id/images", roomHandler.UploadImage)
		api.DELETE("/rooms/:id", roomHandler.DeleteRoom)

		api.GET("/reservations", reservationHandler.ListReservations)
		api.POST("/reservations/walk-in", reservationHandler.RegisterWalkIn)
		api.GET("/reservations/:id", reservationHandler.GetReservation)
		api.PUT("/reservations/:id/status", reservationHandler.UpdateStatus)
		api.GET("/reservations/:id/history", reservationHandler.History)
		api.DELETE("/reservations/:id", reservationHandler.DeleteReservation)

		api.GET("/guests", reportHandler.ListGuests)
		api.GET("/reports/monthly", reportHandler.Monthly)
		api.GET("/reports/reservations.csv", reportHandler.ExportReservations)

		api.GET("/board", boardHandler.Snapshot)
	}
	t.Cleanup(hub.Close)

	return &adminFixture{
		db:         db,
		router:     r,
		uploader:   uploader,
		adminToken: adminToken,
		guestToken: guestToken,
	}
}

func (f *adminFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	return f.doAs(t, f.adminToken, method, path, body)
}

func (f *adminFixture) doAs(t *testing.T, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *adminFixture) upload(t *testing.T, path, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.adminToken)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (f *adminFixture) createRoom(t *testing.T, name, roomType string, capacity int, quantity *int) *models.Room {
	room := &models.Room{Name: name, Type: roomType, Price: 120, Capacity: capacity, Quantity: quantity, Available: true}
	require.NoError(t, f.db.Create(room).Error)
	return room
}

func (f *adminFixture) createReservation(t *testing.T, id string, roomID int64, status string, in, out time.Time) *models.Reservation {
	r := &models.Reservation{
		ID:           id,
		RoomID:       roomID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		CheckInDate:  in,
		CheckOutDate: out,
		Adults:       1,
		Status:       status,
	}
	require.NoError(t, f.db.Create(r).Error)
	return r
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
