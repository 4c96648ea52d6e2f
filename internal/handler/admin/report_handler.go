package admin

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/handler"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	reportService "github.com/Mohsinkhani/hotel-management-sub000/internal/service/report"
)

// ReportHandler 报表处理器
type ReportHandler struct {
	reports *reportService.Service
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *reportService.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListGuests 住客列表
// @Summary 住客列表
// @Description 由预订聚合出住客，默认只看在住，status=all 不过滤
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param status query string false "预订状态"
// @Success 200 {object} response.Response{data=[]reportService.DerivedGuest}
// @Router /api/admin/guests [get]
func (h *ReportHandler) ListGuests(c *gin.Context) {
	guests, err := h.reports.Guests(c.Request.Context(), c.Query("status"))
	handler.MustSucceed(c, err, guests)
}

// Monthly 月度报表
// @Summary 月度报表
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param year query int false "年份，默认当前年"
// @Param month query int false "月份，默认当前月"
// @Success 200 {object} response.Response{data=reportService.MonthlyReport}
// @Router /api/admin/reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	now := time.Now().UTC()
	year, ok := handler.ParseQueryInt(c, "year", now.Year())
	if !ok {
		return
	}
	month, ok := handler.ParseQueryInt(c, "month", int(now.Month()))
	if !ok {
		return
	}

	report, err := h.reports.Monthly(c.Request.Context(), year, month)
	handler.MustSucceed(c, err, report)
}

// ExportReservations 导出预订 CSV
// @Summary 导出预订
// @Tags 报表
// @Produce text/csv
// @Security Bearer
// @Param status query string false "状态"
// @Param room_id query int false "房间ID"
// @Param check_in_from query string false "入住日期起 YYYY-MM-DD"
// @Param check_in_to query string false "入住日期止 YYYY-MM-DD"
// @Success 200 {file} binary
// @Router /api/admin/reports/reservations.csv [get]
func (h *ReportHandler) ExportReservations(c *gin.Context) {
	filter, ok := bindListFilter(c)
	if !ok {
		return
	}
	filters := map[string]interface{}{
		"status":  filter.Status,
		"room_id": filter.RoomID,
		"email":   strings.ToLower(filter.Email),
	}
	if filter.CheckInFrom != nil {
		filters["check_in_from"] = *filter.CheckInFrom
	}
	if filter.CheckInTo != nil {
		filters["check_in_to"] = *filter.CheckInTo
	}

	filename := fmt.Sprintf("reservations-%s.csv", time.Now().UTC().Format("20060102"))
	err := response.CSV(c, filename, func(w io.Writer) error {
		return h.reports.ExportReservations(c.Request.Context(), w, filters)
	})
	handler.HandleError(c, err)
}
