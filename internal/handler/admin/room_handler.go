// Package admin 提供管理端的 HTTP Handler
package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/handler"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	roomService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/room"
)

// RoomHandler 房间管理处理器
type RoomHandler struct {
	catalog *roomService.CatalogService
}

// NewRoomHandler 创建房间管理处理器
func NewRoomHandler(catalog *roomService.CatalogService) *RoomHandler {
	return &RoomHandler{catalog: catalog}
}

// SetAvailabilityRequest 设置可售状态请求
type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// ListRooms 房间列表
// @Summary 房间列表
// @Tags 房间管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param type query string false "房型"
// @Param available query bool false "是否可售"
// @Param min_capacity query int false "最少容纳人数"
// @Param max_price query number false "最高价格"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Room}}
// @Router /api/admin/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{}
	if t := c.Query("type"); t != "" {
		filters["type"] = t
	}
	available, ok := handler.ParseQueryBool(c, "available")
	if !ok {
		return
	}
	if available != nil {
		filters["available"] = *available
	}
	minCapacity, ok := handler.ParseQueryInt(c, "min_capacity", 0)
	if !ok {
		return
	}
	if minCapacity > 0 {
		filters["min_capacity"] = minCapacity
	}
	if s := c.Query("max_price"); s != "" {
		maxPrice, err := strconv.ParseFloat(s, 64)
		if err != nil {
			response.BadRequest(c, "无效的参数 max_price")
			return
		}
		filters["max_price"] = maxPrice
	}

	rooms, total, err := h.catalog.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, rooms, total, p)
}

// GetRoom 房间详情
// @Summary 房间详情
// @Tags 房间管理
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	room, err := h.catalog.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// CreateRoom 创建房间
// @Summary 创建房间
// @Tags 房间管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body roomService.RoomRequest true "房间信息"
// @Success 201 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req roomService.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.catalog.Create(c.Request.Context(), handler.CurrentSession(c), &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Created(c, room)
}

// UpdateRoom 更新房间
// @Summary 更新房间
// @Tags 房间管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body roomService.RoomRequest true "房间信息"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id} [put]
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req roomService.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.catalog.Update(c.Request.Context(), handler.CurrentSession(c), id, &req)
	handler.MustSucceed(c, err, room)
}

// SetAvailability 设置房间可售状态
// @Summary 设置房间可售状态
// @Tags 房间管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body SetAvailabilityRequest true "可售状态"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id}/availability [patch]
func (h *RoomHandler) SetAvailability(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供 available")
		return
	}

	room, err := h.catalog.SetAvailability(c.Request.Context(), handler.CurrentSession(c), id, *req.Available)
	handler.MustSucceed(c, err, room)
}

// DeleteRoom 删除房间，存在关联预订时拒绝
// @Summary 删除房间
// @Tags 房间管理
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/admin/rooms/{id} [delete]
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	err := h.catalog.Delete(c.Request.Context(), handler.CurrentSession(c), id)
	handler.MustSucceed(c, err, nil)
}

// UploadImage 上传房间图片
// @Summary 上传房间图片
// @Tags 房间管理
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param file formData file true "图片文件"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id}/images [post]
func (h *RoomHandler) UploadImage(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请选择要上传的图片")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "无法读取上传文件")
		return
	}
	defer src.Close()

	room, err := h.catalog.UploadImage(c.Request.Context(), handler.CurrentSession(c), id, file.Filename, file.Size, src)
	handler.MustSucceed(c, err, room)
}
