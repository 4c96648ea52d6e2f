// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配，WithMessage/WithError 派生的错误仍与原错误相等
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
	ErrUploadFailed    = New(1009, "文件上传失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrPermissionDenied = New(2003, "权限不足")
)

// 房间错误码 (3000-3999)
var (
	ErrRoomNotFound     = New(3000, "房间不存在")
	ErrRoomInvalid      = New(3001, "房间信息无效")
	ErrRoomInUse        = New(3002, "房间存在关联预订，无法删除")
	ErrRoomTypeInvalid  = New(3003, "无效的房型")
	ErrRoomNotAvailable = New(3004, "房间不可预订")
)

// 预订错误码 (4000-4999)
var (
	ErrReservationNotFound = New(4000, "预订不存在")
	ErrInvalidDateRange    = New(4001, "退房日期必须晚于入住日期")
	ErrGuestInfoRequired   = New(4002, "请填写完整的住客信息")
	ErrTooManyGuests       = New(4003, "入住人数超过房间容量")
	ErrNoRoomAvailable     = New(4004, "所选日期无可用房间")
)

// 状态流转错误码 (5000-5999)
var (
	ErrInvalidStatus        = New(5000, "无效的预订状态")
	ErrTransitionNotAllowed = New(5001, "不允许的状态流转")
	ErrTransitionPartial    = New(5002, "状态已部分更新")
	ErrRoomOccupied         = New(5003, "房间已有在住记录")
)

// 通知错误码 (6000-6999)
var (
	ErrNotifyFailed = New(6000, "通知发送失败")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// Is 标准库 errors.Is 的别名，便于同时导入
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
