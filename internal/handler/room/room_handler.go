// Package room 提供住客端房间与可订查询的 HTTP Handler
package room

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/handler"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	reservationService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/reservation"
	roomService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/room"
)

// Handler 房间处理器
type Handler struct {
	catalog      *roomService.CatalogService
	availability *reservationService.AvailabilityService
}

// NewHandler 创建房间处理器
func NewHandler(catalog *roomService.CatalogService, availability *reservationService.AvailabilityService) *Handler {
	return &Handler{
		catalog:      catalog,
		availability: availability,
	}
}

// Browse 住客端房间列表
// @Summary 房间列表
// @Description 只返回可售房间，每种房型按价格升序展示有限数量
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/rooms [get]
func (h *Handler) Browse(c *gin.Context) {
	rooms, err := h.catalog.Browse(c.Request.Context())
	handler.MustSucceed(c, err, rooms)
}

// GetRoom 获取房间详情
// @Summary 获取房间详情
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	roomID, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	room, err := h.catalog.Get(c.Request.Context(), roomID)
	handler.MustSucceed(c, err, room)
}

// CheckRoomAvailability 检查单个房间在日期区间内的可订数量
// @Summary 检查房间可订
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Param check_in query string true "入住日期 YYYY-MM-DD"
// @Param check_out query string true "退房日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=reservationService.AvailabilityInfo}
// @Router /api/v1/rooms/{id}/availability [get]
func (h *Handler) CheckRoomAvailability(c *gin.Context) {
	roomID, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}
	checkIn, checkOut, ok := handler.ParseRequiredStayRange(c, "check_in", "check_out")
	if !ok {
		return
	}

	info, err := h.availability.CheckRoom(c.Request.Context(), roomID, checkIn, checkOut)
	handler.MustSucceed(c, err, info)
}

// SearchAvailability 按日期与人数搜索可订房间
// @Summary 搜索可订房间
// @Tags 房间
// @Produce json
// @Param check_in query string true "入住日期 YYYY-MM-DD"
// @Param check_out query string true "退房日期 YYYY-MM-DD"
// @Param guests query int false "入住人数"
// @Success 200 {object} response.Response{data=[]reservationService.AvailabilityInfo}
// @Router /api/v1/availability [get]
func (h *Handler) SearchAvailability(c *gin.Context) {
	checkIn, checkOut, ok := handler.ParseRequiredStayRange(c, "check_in", "check_out")
	if !ok {
		return
	}
	guests, ok := handler.ParseQueryInt(c, "guests", 1)
	if !ok {
		return
	}
	if guests < 1 {
		response.BadRequest(c, "入住人数至少为 1")
		return
	}

	list, err := h.availability.Search(c.Request.Context(), checkIn, checkOut, guests)
	handler.MustSucceed(c, err, list)
}
