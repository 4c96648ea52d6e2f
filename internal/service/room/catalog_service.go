// Package room 提供房间目录管理与展示
package room

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/cache"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/validation"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/oss"
)

const browseCacheName = "room_browse"

// Store 房间存储
type Store interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	SetAvailable(ctx context.Context, id int64, available bool) error
	List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Room, int64, error)
	ListAvailable(ctx context.Context, minCapacity int) ([]*models.Room, error)
	Delete(ctx context.Context, id int64) error
}

// ReservationCounter 统计房间关联的预订
type ReservationCounter interface {
	CountByRoom(ctx context.Context, roomID int64) (int64, error)
}

// BoardNotifier 房态变化通知
type BoardNotifier interface {
	RoomChanged(ctx context.Context, roomID int64)
}

// Options 目录配置
type Options struct {
	DisplayLimitPerType int
	CacheTTL            time.Duration
	UploadDir           string
	MaxImageSize        int64
}

// OptionsFromConfig 从配置读取
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DisplayLimitPerType: cfg.Business.Catalog.DisplayLimitPerType,
		CacheTTL:            cfg.Business.Catalog.CacheDuration(),
		UploadDir:           cfg.OSS.UploadDir,
		MaxImageSize:        cfg.OSS.MaxImageSize,
	}
}

// CatalogService 房间目录服务
type CatalogService struct {
	rooms        Store
	reservations ReservationCounter
	cache        *cache.Store
	uploader     oss.Uploader
	board        BoardNotifier
	opts         Options
}

// NewCatalogService 创建房间目录服务，cache/uploader/board 可为 nil
func NewCatalogService(
	rooms Store,
	reservations ReservationCounter,
	cacheStore *cache.Store,
	uploader oss.Uploader,
	board BoardNotifier,
	opts Options,
) *CatalogService {
	return &CatalogService{
		rooms:        rooms,
		reservations: reservations,
		cache:        cacheStore,
		uploader:     uploader,
		board:        board,
		opts:         opts,
	}
}

// RoomRequest 创建/更新房间请求
type RoomRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Type        string   `json:"type" validate:"required"`
	Price       float64  `json:"price" validate:"gt=0"`
	Capacity    int      `json:"capacity" validate:"gte=1,lte=20"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=1,lte=500"`
	Available   *bool    `json:"available"`
	Description string   `json:"description" validate:"max=2000"`
	Amenities   []string `json:"amenities" validate:"max=50,dive,required,max=50"`
	Images      []string `json:"images" validate:"max=20,dive,required,url"`
}

func (req *RoomRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Check(req); err != nil {
		return err
	}
	if !models.IsValidRoomType(req.Type) {
		return errors.ErrRoomTypeInvalid.WithMessage(fmt.Sprintf("房型必须为 %s 之一", strings.Join(models.RoomTypes, "/")))
	}
	return nil
}

func (req *RoomRequest) apply(room *models.Room) {
	room.Name = req.Name
	room.Type = req.Type
	room.Price = req.Price
	room.Capacity = req.Capacity
	room.Quantity = req.Quantity
	if req.Available != nil {
		room.Available = *req.Available
	}
	room.Description = nil
	if d := strings.TrimSpace(req.Description); d != "" {
		room.Description = &d
	}
	room.Amenities = req.Amenities
	if req.Images != nil {
		room.Images = req.Images
	}
}

func requireAdmin(sess *session.Session) error {
	if sess == nil || !sess.IsAdmin {
		return errors.ErrPermissionDenied
	}
	return nil
}

func (s *CatalogService) load(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// invalidate 清除展示缓存，失败只记日志
func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cache.KeyPrefixRoomBrowse); err != nil {
		logger.Warn("清除房间缓存失败", logger.Err(err))
	}
}

func (s *CatalogService) roomChanged(ctx context.Context, roomID int64) {
	s.invalidate(ctx)
	if s.board != nil {
		s.board.RoomChanged(ctx, roomID)
	}
}

// Create 新增房间，未指定时默认可售
func (s *CatalogService) Create(ctx context.Context, sess *session.Session, req *RoomRequest) (*models.Room, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	room := &models.Room{Available: true}
	req.apply(room)
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.roomChanged(ctx, room.ID)
	logger.Info("新增房间", logger.RoomID(room.ID), logger.String("name", room.Name), logger.Actor(sess.Actor()))
	return room, nil
}

// Update 更新房间信息
func (s *CatalogService) Update(ctx context.Context, sess *session.Session, id int64, req *RoomRequest) (*models.Room, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	room, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(room)
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.roomChanged(ctx, room.ID)
	return room, nil
}

// SetAvailability 手动设置可售标记，维修停售等场景
func (s *CatalogService) SetAvailability(ctx context.Context, sess *session.Session, id int64, available bool) (*models.Room, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := s.rooms.SetAvailable(ctx, id, available); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.roomChanged(ctx, id)
	logger.Info("房间可售状态变更", logger.RoomID(id), logger.Bool("available", available), logger.Actor(sess.Actor()))
	return s.load(ctx, id)
}

// Delete 删除房间，存在关联预订时拒绝
func (s *CatalogService) Delete(ctx context.Context, sess *session.Session, id int64) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	count, err := s.reservations.CountByRoom(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if count > 0 {
		return errors.ErrRoomInUse
	}

	if err := s.rooms.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	s.roomChanged(ctx, id)
	return nil
}

// Get 获取房间
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Room, error) {
	return s.load(ctx, id)
}

// List 管理端分页列表
func (s *CatalogService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Room, int64, error) {
	if t, ok := filters["type"].(string); ok && t != "" && !models.IsValidRoomType(t) {
		return nil, 0, errors.ErrRoomTypeInvalid
	}
	rooms, total, err := s.rooms.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return rooms, total, nil
}

// Browse 住客端房间展示：只含可售房间，每种房型最多展示 DisplayLimitPerType 间，按房型顺序、价格升序
func (s *CatalogService) Browse(ctx context.Context) ([]*models.Room, error) {
	key := cache.BuildKey(cache.KeyPrefixRoomBrowse, "all")

	var cached []*models.Room
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn("读取房间缓存失败", logger.Err(err))
	}
	if hit {
		metrics.GetMetrics().RecordCacheHit(browseCacheName)
		return cached, nil
	}
	if s.cache.Enabled() {
		metrics.GetMetrics().RecordCacheMiss(browseCacheName)
	}

	rooms, err := s.rooms.ListAvailable(ctx, 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	result := CapPerType(rooms, s.opts.DisplayLimitPerType)

	if err := s.cache.SetJSON(ctx, key, result, s.opts.CacheTTL); err != nil {
		logger.Warn("写入房间缓存失败", logger.Err(err))
	}
	return result, nil
}

// CapPerType 按房型分组截断，limit <= 0 时不限制，未知房型排在最后
func CapPerType(rooms []*models.Room, limit int) []*models.Room {
	groups := make(map[string][]*models.Room)
	var unknown []string
	for _, room := range rooms {
		if _, seen := groups[room.Type]; !seen && !models.IsValidRoomType(room.Type) {
			unknown = append(unknown, room.Type)
		}
		if limit > 0 && len(groups[room.Type]) >= limit {
			continue
		}
		groups[room.Type] = append(groups[room.Type], room)
	}

	result := make([]*models.Room, 0, len(rooms))
	for _, t := range append(append([]string{}, models.RoomTypes...), unknown...) {
		result = append(result, groups[t]...)
	}
	return result
}

// UploadImage 上传房间图片并追加到图片列表
func (s *CatalogService) UploadImage(ctx context.Context, sess *session.Session, id int64, filename string, size int64, reader io.Reader) (*models.Room, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, errors.ErrUploadFailed.WithMessage("未配置对象存储")
	}

	room, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	contentType, body, err := oss.SniffImage(filename, size, s.opts.MaxImageSize, reader)
	if err != nil {
		return nil, errors.ErrInvalidParams.WithMessage(err.Error())
	}

	key := oss.ObjectKey(s.opts.UploadDir, room.ID, filename, time.Now())
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, errors.ErrUploadFailed.WithError(err)
	}

	room.Images = append(room.Images, url)
	if err := s.rooms.Update(ctx, room); err != nil {
		// 记录未写入时清理已上传的对象
		_ = s.uploader.Delete(ctx, key)
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.invalidate(ctx)
	return room, nil
}
