package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/cache"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/jwt"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/realtime"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/repository"
	boardService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/board"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/service/notification"
	reportService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/report"
	reservationService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/reservation"
	roomService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/room"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/kafka"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/mqtt"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/oss"
	"github.com/Mohsinkhani/hotel-management-sub000/pkg/sms"
)

// appDeps 路由所需的服务与基础设施
type appDeps struct {
	db          *gorm.DB
	redisClient *redis.Client
	cache       *cache.Store
	jwtManager  *jwt.Manager

	catalog      *roomService.CatalogService
	availability *reservationService.AvailabilityService
	lifecycle    *reservationService.LifecycleService
	booking      *reservationService.BookingService
	reports      *reportService.Service
	board        *boardService.Service
	hub          *realtime.Hub

	producer   *kafka.Writer
	mqttClient *mqtt.Client
}

// buildDeps 组装仓储、外部客户端与业务服务
func buildDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*appDeps, error) {
	d := &appDeps{
		db:          db,
		redisClient: redisClient,
		cache:       cache.NewStore(redisClient),
		jwtManager: jwt.NewManager(&jwt.Config{
			Secret:     cfg.JWT.Secret,
			Issuer:     cfg.JWT.Issuer,
			ExpireTime: cfg.JWT.TokenDuration(),
		}),
		hub: realtime.NewHub(),
	}

	// 初始化仓储
	roomRepo := repository.NewRoomRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	eventRepo := repository.NewReservationEventRepository(db)

	// 房态看板：WebSocket 与 MQTT 两个推送通道
	d.board = boardService.NewService(roomRepo, checkInRepo, d.hub)
	if cfg.MQTT.Enabled {
		d.mqttClient = mqtt.NewClient(&mqtt.Config{
			Broker:         cfg.MQTT.Broker,
			ClientID:       cfg.MQTT.ClientIDPrefix + uuid.NewString()[:8],
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			KeepAlive:      cfg.MQTT.KeepAlive,
			AutoReconnect:  cfg.MQTT.AutoReconnect,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
			QoS:            cfg.MQTT.QoS,
		}, logger.Named("mqtt"))
		if err := d.mqttClient.Connect(); err != nil {
			// 自动重连开启时后续会恢复，发布失败只记日志
			logger.Warn("MQTT 连接失败，房态推送将在重连后恢复", logger.Err(err))
		}
		d.board.AddPublisher(boardService.NewMQTTPublisher(d.mqttClient, cfg.MQTT.TopicPrefix))
	}

	// 通知渠道
	notifyDeps := notification.Deps{}
	if cfg.Kafka.Enabled {
		d.producer = kafka.NewWriter(&kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.NoticeTopic,
			WriteTimeout: time.Duration(cfg.Kafka.WriteTimeout) * time.Second,
		})
		notifyDeps.Producer = d.producer
	}
	sender, err := newSMSSender(&cfg.SMS)
	if err != nil {
		return nil, err
	}
	notifyDeps.SMSSender = sender

	notifier, err := notification.NewFromConfig(cfg, notifyDeps)
	if err != nil {
		return nil, err
	}

	uploader, err := newUploader(&cfg.OSS)
	if err != nil {
		return nil, err
	}

	// 初始化服务
	d.catalog = roomService.NewCatalogService(roomRepo, reservationRepo, d.cache, uploader, d.board, roomService.OptionsFromConfig(cfg))
	d.availability = reservationService.NewAvailabilityService(roomRepo, reservationRepo)
	d.lifecycle = reservationService.NewLifecycleService(
		reservationRepo,
		roomRepo,
		checkInRepo,
		eventRepo,
		notifier,
		d.board,
		reservationService.OptionsFromConfig(&cfg.Business.Reservation),
	)
	d.booking = reservationService.NewBookingService(roomRepo, reservationRepo, checkInRepo, d.lifecycle, d.board)
	d.reports = reportService.NewService(reservationRepo, checkInRepo, roomRepo)

	logger.Info("服务组装完成",
		logger.Any("notify_channels", notifier.Channels()),
		logger.String("transition_policy", cfg.Business.Reservation.TransitionPolicy),
		logger.Bool("mqtt", d.mqttClient != nil),
		logger.Bool("cache", d.cache.Enabled()),
	)
	return d, nil
}

// newSMSSender 生产环境使用阿里云，其余使用 Mock
func newSMSSender(cfg *config.SMSConfig) (sms.Sender, error) {
	switch cfg.Provider {
	case "aliyun":
		return sms.NewAliyunSender(&sms.AliyunConfig{
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.AccessKeySecret,
			SignName:        cfg.SignName,
		})
	case "mock", "":
		return sms.NewMockSender(), nil
	default:
		return nil, fmt.Errorf("unsupported sms provider %q", cfg.Provider)
	}
}

// newUploader 房间图片存储
func newUploader(cfg *config.OSSConfig) (oss.Uploader, error) {
	switch cfg.Provider {
	case "aliyun":
		return oss.NewAliyunUploader(&oss.AliyunConfig{
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.AccessKeySecret,
			BucketName:      cfg.Bucket,
			Domain:          cfg.CustomDomain,
		})
	case "mock", "":
		return oss.NewMockUploader(), nil
	default:
		return nil, fmt.Errorf("unsupported oss provider %q", cfg.Provider)
	}
}

// Close 释放外部连接
func (d *appDeps) Close() {
	d.hub.Close()
	if d.mqttClient != nil {
		d.mqttClient.Disconnect()
	}
	if d.producer != nil {
		if err := d.producer.Close(); err != nil {
			logger.Warn("Kafka 生产者关闭失败", logger.Err(err))
		}
	}
}

// ping 检查数据库与 Redis
func (d *appDeps) ping(ctx context.Context) map[string]string {
	checks := map[string]string{"database": "ok"}

	sqlDB, err := d.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = "error: " + err.Error()
	}

	if d.redisClient == nil {
		checks["redis"] = "disabled"
	} else if err := d.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = "error: " + err.Error()
	} else {
		checks["redis"] = "ok"
	}
	return checks
}
