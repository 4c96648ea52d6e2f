// Package validation 请求参数校验，字段名取 json 标签
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Get 共享校验器
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		instance = v
	})
	return instance
}

// Check 校验结构体，失败时返回参数错误
func Check(s interface{}) error {
	if err := Get().Struct(s); err != nil {
		return ToAppError(err)
	}
	return nil
}

// ToAppError 转换为参数错误
func ToAppError(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.ErrInvalidParams.WithMessage(fmt.Sprintf("参数 %s 校验失败: %s", fe.Field(), fe.Tag()))
	}
	return errors.ErrInvalidParams.WithError(err)
}
