package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/handler"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	reservationService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/reservation"
)

// ReservationHandler 预订管理处理器
type ReservationHandler struct {
	booking   *reservationService.BookingService
	lifecycle *reservationService.LifecycleService
}

// NewReservationHandler 创建预订管理处理器
func NewReservationHandler(booking *reservationService.BookingService, lifecycle *reservationService.LifecycleService) *ReservationHandler {
	return &ReservationHandler{
		booking:   booking,
		lifecycle: lifecycle,
	}
}

// UpdateStatusRequest 状态变更请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListReservations 预订列表
// @Summary 预订列表
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Param room_id query int false "房间ID"
// @Param email query string false "住客邮箱"
// @Param check_in_from query string false "入住日期起 YYYY-MM-DD"
// @Param check_in_to query string false "入住日期止 YYYY-MM-DD"
// @Param sort query string false "排序字段 created_at/check_in_date"
// @Param order query string false "asc/desc"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Reservation}}
// @Router /api/admin/reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	p := handler.BindPagination(c)
	filter, ok := bindListFilter(c)
	if !ok {
		return
	}

	list, total, err := h.booking.List(c.Request.Context(), filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

func bindListFilter(c *gin.Context) (*reservationService.ListFilter, bool) {
	roomID, ok := handler.ParseQueryID(c, "room_id", "房间")
	if !ok {
		return nil, false
	}
	from, ok := handler.ParseQueryDate(c, "check_in_from", "无效的开始日期格式")
	if !ok {
		return nil, false
	}
	to, ok := handler.ParseQueryDate(c, "check_in_to", "无效的结束日期格式")
	if !ok {
		return nil, false
	}
	return &reservationService.ListFilter{
		Status:      c.Query("status"),
		RoomID:      roomID,
		Email:       c.Query("email"),
		CheckInFrom: from,
		CheckInTo:   to,
		Sort:        c.Query("sort"),
		Order:       c.Query("order"),
	}, true
}

// GetReservation 预订详情
// @Summary 预订详情
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path string true "预订ID"
// @Success 200 {object} response.Response{data=models.Reservation}
// @Router /api/admin/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := handler.ParseStringID(c, "id", "预订")
	if !ok {
		return
	}

	r, err := h.booking.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, r)
}

// UpdateStatus 变更预订状态并执行房间与入住记录副作用
// @Summary 变更预订状态
// @Description 部分步骤失败时返回 5002，data 中包含各步骤执行结果
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "预订ID"
// @Param request body UpdateStatusRequest true "目标状态"
// @Success 200 {object} response.Response{data=reservationService.TransitionResult}
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response{data=reservationService.TransitionResult}
// @Router /api/admin/reservations/{id}/status [put]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParseStringID(c, "id", "预订")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请提供目标状态")
		return
	}

	result, err := h.lifecycle.Transition(c.Request.Context(), handler.CurrentSession(c), id, req.Status)
	respondTransition(c, result, err)
}

// History 预订状态变更记录
// @Summary 预订状态变更记录
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path string true "预订ID"
// @Success 200 {object} response.Response{data=[]models.ReservationStatusEvent}
// @Router /api/admin/reservations/{id}/history [get]
func (h *ReservationHandler) History(c *gin.Context) {
	id, ok := handler.ParseStringID(c, "id", "预订")
	if !ok {
		return
	}

	events, err := h.lifecycle.History(c.Request.Context(), id)
	handler.MustSucceed(c, err, events)
}

// RegisterWalkIn 前台登记直接入住
// @Summary 前台登记
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body reservationService.CreateReservationRequest true "住客与入住信息"
// @Success 201 {object} response.Response{data=reservationService.TransitionResult}
// @Router /api/admin/reservations/walk-in [post]
func (h *ReservationHandler) RegisterWalkIn(c *gin.Context) {
	var req reservationService.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.booking.RegisterWalkIn(c.Request.Context(), handler.CurrentSession(c), &req)
	if err != nil {
		respondTransition(c, result, err)
		return
	}
	response.Created(c, result)
}

// DeleteReservation 删除预订
// @Summary 删除预订
// @Tags 预订管理
// @Produce json
// @Security Bearer
// @Param id path string true "预订ID"
// @Success 200 {object} response.Response{data=reservationService.DeleteResult}
// @Router /api/admin/reservations/{id} [delete]
func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id, ok := handler.ParseStringID(c, "id", "预订")
	if !ok {
		return
	}

	result, err := h.booking.DeleteReservation(c.Request.Context(), handler.CurrentSession(c), id)
	if err != nil && result != nil {
		handler.HandleErrorWithData(c, err, result)
		return
	}
	handler.MustSucceed(c, err, result)
}

// respondTransition 状态变更已执行过步骤时，错误响应中附带执行结果
func respondTransition(c *gin.Context, result *reservationService.TransitionResult, err error) {
	if err != nil && result != nil {
		handler.HandleErrorWithData(c, err, result)
		return
	}
	handler.MustSucceed(c, err, result)
}
