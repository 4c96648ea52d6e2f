// Package reservation 提供住客端预订的 HTTP Handler
package reservation

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/handler"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	reservationService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/reservation"
)

// Handler 预订处理器
type Handler struct {
	booking *reservationService.BookingService
}

// NewHandler 创建预订处理器
func NewHandler(booking *reservationService.BookingService) *Handler {
	return &Handler{booking: booking}
}

// CreateReservation 住客提交预订
// @Summary 提交预订
// @Description 未登录也可预订，登录后预订会关联到住客身份
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body reservationService.CreateReservationRequest true "预订信息"
// @Success 201 {object} response.Response{data=models.Reservation}
// @Failure 409 {object} response.Response
// @Router /api/v1/reservations [post]
func (h *Handler) CreateReservation(c *gin.Context) {
	var req reservationService.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	r, err := h.booking.CreateReservation(c.Request.Context(), handler.CurrentSession(c), &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Created(c, r)
}

// GetQRCode 预订确认二维码
// @Summary 预订确认二维码
// @Tags 预订
// @Produce png
// @Param id path string true "预订ID"
// @Success 200 {file} binary
// @Router /api/v1/reservations/{id}/qrcode [get]
func (h *Handler) GetQRCode(c *gin.Context) {
	id, ok := handler.ParseStringID(c, "id", "预订")
	if !ok {
		return
	}

	png, err := h.booking.ConfirmationQRCode(c.Request.Context(), id)
	if handler.HandleError(c, err) {
		return
	}
	response.PNG(c, png)
}
