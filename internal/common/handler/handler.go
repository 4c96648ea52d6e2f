// Package handler 提供 API Handler 的通用辅助函数
// 统一错误响应、会话检查、参数解析与分页
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/utils"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/middleware"
)

// ============================================================================
// 统一错误处理
// ============================================================================

// HTTPStatus 业务错误码对应的 HTTP 状态码
func HTTPStatus(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrInvalidParams.Code,
		errors.ErrRoomInvalid.Code,
		errors.ErrRoomTypeInvalid.Code,
		errors.ErrInvalidDateRange.Code,
		errors.ErrGuestInfoRequired.Code,
		errors.ErrTooManyGuests.Code,
		errors.ErrInvalidStatus.Code,
		errors.ErrUploadFailed.Code:
		return http.StatusBadRequest
	case errors.ErrNotFound.Code,
		errors.ErrRoomNotFound.Code,
		errors.ErrReservationNotFound.Code:
		return http.StatusNotFound
	case errors.ErrAlreadyExists.Code,
		errors.ErrRoomInUse.Code,
		errors.ErrRoomNotAvailable.Code,
		errors.ErrNoRoomAvailable.Code,
		errors.ErrTransitionNotAllowed.Code,
		errors.ErrRoomOccupied.Code:
		return http.StatusConflict
	case errors.ErrRateLimitExceed.Code:
		return http.StatusTooManyRequests
	case errors.ErrUnauthorized.Code,
		errors.ErrTokenExpired.Code,
		errors.ErrTokenInvalid.Code:
		return http.StatusUnauthorized
	case errors.ErrPermissionDenied.Code:
		return http.StatusForbidden
	case errors.ErrExternalService.Code,
		errors.ErrNotifyFailed.Code:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 处理错误并发送适当的响应
// err 为 nil 返回 false；否则发送错误响应并返回 true，调用方应该 return
//
// 使用示例:
//
//	result, err := service.DoSomething()
//	if handler.HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	return HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData 处理错误，响应中附带 data（如部分完成的状态变更结果）
func HandleErrorWithData(c *gin.Context, err error, data interface{}) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)
	if !errors.IsAppError(err) {
		response.InternalError(c, "服务器内部错误")
		return true
	}
	appErr := errors.GetAppError(err)
	status := HTTPStatus(appErr)
	// Message 不含底层错误，内部错误也可直接返回
	if data != nil {
		response.ErrorWithData(c, status, appErr.Code, appErr.Message, data)
		return true
	}
	response.Error(c, status, appErr.Code, appErr.Message)
	return true
}

// MustSucceed 有错误返回错误响应，否则返回成功响应
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedPage 分页响应版本
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, p utils.Pagination) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, p.Page, p.PageSize)
}

// ============================================================================
// 会话
// ============================================================================

// CurrentSession 当前请求的会话，未登录时为匿名会话
func CurrentSession(c *gin.Context) *session.Session {
	return middleware.GetSession(c)
}

// RequireSession 获取已登录的会话，未登录时返回 401
//
// 使用示例:
//
//	sess, ok := handler.RequireSession(c)
//	if !ok {
//	    return
//	}
func RequireSession(c *gin.Context) (*session.Session, bool) {
	sess := middleware.GetSession(c)
	if !sess.IsAuthenticated() {
		response.Unauthorized(c, "请先登录")
		return nil, false
	}
	return sess, true
}

// ============================================================================
// 参数解析
// ============================================================================

// ParseID 解析路径参数 "id" 为 int64
// 解析失败时已发送 400 响应
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为正整数
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseStringID 读取字符串形式的路径参数（预订 ID）
func ParseStringID(c *gin.Context, paramName, resourceName string) (string, bool) {
	id := strings.TrimSpace(c.Param(paramName))
	if id == "" {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return "", false
	}
	return id, true
}

// ParseQueryID 解析查询参数中的可选 ID，为空时返回 (0, true)
func ParseQueryID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseQueryInt 解析查询参数中的可选整数，为空时返回 def
func ParseQueryInt(c *gin.Context, paramName string, def int) (int, bool) {
	s := c.Query(paramName)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		response.BadRequest(c, "无效的参数 "+paramName)
		return 0, false
	}
	return v, true
}

// ParseQueryBool 解析查询参数中的可选布尔值
func ParseQueryBool(c *gin.Context, paramName string) (*bool, bool) {
	s := c.Query(paramName)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		response.BadRequest(c, "无效的参数 "+paramName)
		return nil, false
	}
	return &v, true
}

// ============================================================================
// 日期解析
// ============================================================================

// DateFormat 日期格式
const DateFormat = "2006-01-02"

// ParseDate 解析日期字符串 (YYYY-MM-DD)，结果为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, strings.TrimSpace(s), time.UTC)
}

// ParseQueryDate 从查询参数解析可选日期
// 参数为空返回 (nil, true)，解析失败返回 (nil, false) 并已发送 400 响应
func ParseQueryDate(c *gin.Context, paramName, errorMsg string) (*time.Time, bool) {
	dateStr := c.Query(paramName)
	if dateStr == "" {
		return nil, true
	}
	t, err := ParseDate(dateStr)
	if err != nil {
		response.BadRequest(c, errorMsg)
		return nil, false
	}
	return &t, true
}

// ParseRequiredStayRange 解析必填的入住/退房日期
func ParseRequiredStayRange(c *gin.Context, inParam, outParam string) (time.Time, time.Time, bool) {
	inStr, outStr := c.Query(inParam), c.Query(outParam)
	if inStr == "" || outStr == "" {
		response.BadRequest(c, "请指定入住和退房日期")
		return time.Time{}, time.Time{}, false
	}
	checkIn, err := ParseDate(inStr)
	if err != nil {
		response.BadRequest(c, "无效的入住日期格式")
		return time.Time{}, time.Time{}, false
	}
	checkOut, err := ParseDate(outStr)
	if err != nil {
		response.BadRequest(c, "无效的退房日期格式")
		return time.Time{}, time.Time{}, false
	}
	return checkIn, checkOut, true
}

// ============================================================================
// 分页处理
// ============================================================================

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, page_size=20, 最大 page_size=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p.Normalize()
	return p
}
