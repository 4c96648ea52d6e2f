// Package main 是应用程序入口
package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/metrics"
	adminHandler "github.com/Mohsinkhani/hotel-management-sub000/internal/handler/admin"
	reservationHandler "github.com/Mohsinkhani/hotel-management-sub000/internal/handler/reservation"
	roomHandler "github.com/Mohsinkhani/hotel-management-sub000/internal/handler/room"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/middleware"
)

// setupRouter 设置路由
func setupRouter(r *gin.Engine, cfg *config.Config, log *zap.Logger, deps *appDeps) {
	// 初始化处理器
	roomH := roomHandler.NewHandler(deps.catalog, deps.availability)
	reservationH := reservationHandler.NewHandler(deps.booking)
	adminRoomH := adminHandler.NewRoomHandler(deps.catalog)
	adminReservationH := adminHandler.NewReservationHandler(deps.booking, deps.lifecycle)
	reportH := adminHandler.NewReportHandler(deps.reports)
	boardH := adminHandler.NewBoardHandler(deps.board, deps.hub, cfg.Business.Board.SendBuffer)

	// 全局中间件
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(middleware.CORSFromConfig(&cfg.CORS)))
	r.Use(middleware.Tracing(&middleware.TracingConfig{
		ServiceName: cfg.Tracing.ServiceName,
		SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
	}))
	r.Use(middleware.Logging(middleware.DefaultLoggingConfig(log)))
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(deps))

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	identity := middleware.Identity(&middleware.IdentityConfig{
		JWTManager: deps.jwtManager,
		AdminEmail: cfg.Admin.Email,
	})

	// 住客端接口，登录可选
	v1 := r.Group("/api/v1")
	v1.Use(identity)
	{
		v1.GET("/rooms", roomH.Browse)
		v1.GET("/rooms/:id", roomH.GetRoom)
		v1.GET("/rooms/:id/availability", roomH.CheckRoomAvailability)
		v1.GET("/availability", roomH.SearchAvailability)

		booking := []gin.HandlerFunc{}
		if cfg.RateLimit.Enabled {
			booking = append(booking, middleware.BookingRateLimit(deps.cache, cfg.RateLimit.BookingLimit, cfg.RateLimit.Window()))
		}
		booking = append(booking, reservationH.CreateReservation)
		v1.POST("/reservations", booking...)
		v1.GET("/reservations/:id/qrcode", reservationH.GetQRCode)
	}

	// 管理后台 API，要求管理员邮箱
	admin := r.Group("/api/admin")
	admin.Use(identity, middleware.RequireAdmin())
	{
		// 预订管理
		admin.GET("/reservations", adminReservationH.ListReservations)
		admin.POST("/reservations/walk-in", adminReservationH.RegisterWalkIn)
		admin.GET("/reservations/:id", adminReservationH.GetReservation)
		admin.PUT("/reservations/:id/status", adminReservationH.UpdateStatus)
		admin.GET("/reservations/:id/history", adminReservationH.History)
		admin.DELETE("/reservations/:id", adminReservationH.DeleteReservation)

		// 房间管理
		admin.GET("/rooms", adminRoomH.ListRooms)
		admin.POST("/rooms", adminRoomH.CreateRoom)
		admin.GET("/rooms/:id", adminRoomH.GetRoom)
		admin.PUT("/rooms/:id", adminRoomH.UpdateRoom)
		admin.PATCH("/rooms/:id/availability", adminRoomH.SetAvailability)
		admin.POST("/rooms/:id/images", adminRoomH.UploadImage)
		admin.DELETE("/rooms/:id", adminRoomH.DeleteRoom)

		// 住客与报表
		admin.GET("/guests", reportH.ListGuests)
		admin.GET("/reports/monthly", reportH.Monthly)
		admin.GET("/reports/reservations.csv", reportH.ExportReservations)

		// 房态看板
		admin.GET("/board", boardH.Snapshot)
		admin.GET("/board/ws", boardH.Subscribe)
	}
}
