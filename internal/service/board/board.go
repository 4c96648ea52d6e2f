// Package board 维护房态看板并向订阅方推送
package board

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// 房态
const (
	StateFree     = "free"     // 空闲
	StateOccupied = "occupied" // 在住
	StateDisabled = "disabled" // 停售
	StateRemoved  = "removed"  // 已删除
)

// Occupant 在住客人
type Occupant struct {
	ReservationID string    `json:"reservation_id"`
	GuestName     string    `json:"guest_name"`
	CheckInAt     time.Time `json:"check_in_at"`
}

// RoomStatus 单个房间的房态
type RoomStatus struct {
	RoomID    int64      `json:"room_id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	State     string     `json:"state"`
	Available bool       `json:"available"`
	Units     int        `json:"units"`
	Occupants []Occupant `json:"occupants"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Snapshot 全量房态
type Snapshot struct {
	Rooms       []RoomStatus `json:"rooms"`
	Total       int          `json:"total"`
	Occupied    int          `json:"occupied"`
	Free        int          `json:"free"`
	Disabled    int          `json:"disabled"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Publisher 房态推送通道
type Publisher interface {
	PublishRoomStatus(ctx context.Context, status RoomStatus) error
	PublishSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// RoomReader 房间读取
type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	ListAll(ctx context.Context) ([]*models.Room, error)
}

// CheckInReader 入住记录读取
type CheckInReader interface {
	ListOpen(ctx context.Context) ([]*models.CheckIn, error)
}

// Service 房态看板服务
type Service struct {
	rooms      RoomReader
	checkIns   CheckInReader
	mu         sync.RWMutex
	publishers []Publisher
}

// NewService 创建看板服务
func NewService(rooms RoomReader, checkIns CheckInReader, publishers ...Publisher) *Service {
	return &Service{rooms: rooms, checkIns: checkIns, publishers: publishers}
}

// AddPublisher 追加推送通道
func (s *Service) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

func (s *Service) publisherList() []Publisher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Publisher(nil), s.publishers...)
}

// BuildStatus 由房间和该房间的未退房记录计算房态
func BuildStatus(room *models.Room, open []*models.CheckIn, now time.Time) RoomStatus {
	status := RoomStatus{
		RoomID:    room.ID,
		Name:      room.Name,
		Type:      room.Type,
		Available: room.Available,
		Units:     room.UnitCount(),
		Occupants: make([]Occupant, 0, len(open)),
		UpdatedAt: now,
	}
	for _, c := range open {
		o := Occupant{ReservationID: c.ReservationID, CheckInAt: c.CheckInAt}
		if c.GuestName != nil {
			o.GuestName = *c.GuestName
		}
		status.Occupants = append(status.Occupants, o)
	}

	switch {
	case len(open) > 0:
		status.State = StateOccupied
	case !room.Available:
		status.State = StateDisabled
	default:
		status.State = StateFree
	}
	return status
}

func groupOpen(records []*models.CheckIn) map[int64][]*models.CheckIn {
	byRoom := make(map[int64][]*models.CheckIn)
	for _, c := range records {
		if c.IsOpen() {
			byRoom[c.RoomID] = append(byRoom[c.RoomID], c)
		}
	}
	return byRoom
}

// Snapshot 当前全量房态
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	open, err := s.checkIns.ListOpen(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	now := time.Now()
	byRoom := groupOpen(open)
	snapshot := &Snapshot{
		Rooms:       make([]RoomStatus, 0, len(rooms)),
		Total:       len(rooms),
		GeneratedAt: now,
	}
	for _, room := range rooms {
		status := BuildStatus(room, byRoom[room.ID], now)
		switch status.State {
		case StateOccupied:
			snapshot.Occupied++
		case StateDisabled:
			snapshot.Disabled++
		default:
			snapshot.Free++
		}
		snapshot.Rooms = append(snapshot.Rooms, status)
	}

	metrics.GetMetrics().SetOccupiedRooms(snapshot.Occupied)
	return snapshot, nil
}

// RoomChanged 推送单个房间的最新房态，失败只记日志
func (s *Service) RoomChanged(ctx context.Context, roomID int64) {
	publishers := s.publisherList()
	if len(publishers) == 0 {
		return
	}

	status, err := s.roomStatus(ctx, roomID)
	if err != nil {
		logger.Warn("计算房态失败", logger.RoomID(roomID), logger.Err(err))
		return
	}

	for _, p := range publishers {
		if err := p.PublishRoomStatus(ctx, *status); err != nil {
			logger.Warn("推送房态失败", logger.RoomID(roomID), logger.Err(err))
		}
	}
}

func (s *Service) roomStatus(ctx context.Context, roomID int64) (*RoomStatus, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return &RoomStatus{RoomID: roomID, State: StateRemoved, Occupants: []Occupant{}, UpdatedAt: time.Now()}, nil
		}
		return nil, err
	}
	open, err := s.checkIns.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	status := BuildStatus(room, groupOpen(open)[roomID], time.Now())
	return &status, nil
}

// Broadcast 向所有通道推送全量房态
func (s *Service) Broadcast(ctx context.Context) error {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, p := range s.publisherList() {
		if err := p.PublishSnapshot(ctx, snapshot); err != nil {
			logger.Warn("推送全量房态失败", logger.Err(err))
		}
	}
	return nil
}
