// Package session 提供显式传递的当前用户上下文
package session

import (
	"context"
	"strings"
)

// Session 当前请求的用户身份
type Session struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// New 根据身份令牌中的信息创建会话，邮箱与管理员邮箱不区分大小写比较
func New(subject, email, adminEmail string) *Session {
	email = strings.TrimSpace(email)
	return &Session{
		Subject: subject,
		Email:   email,
		IsAdmin: adminEmail != "" && strings.EqualFold(email, strings.TrimSpace(adminEmail)),
	}
}

// Anonymous 匿名会话
func Anonymous() *Session {
	return &Session{}
}

// System 后台任务使用的系统会话
func System() *Session {
	return &Session{Subject: "system", Email: "system", IsAdmin: true}
}

// IsAuthenticated 是否已登录
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Email != ""
}

// Actor 审计记录中的操作人
func (s *Session) Actor() string {
	if s == nil || s.Email == "" {
		return "anonymous"
	}
	return s.Email
}

// GuestID 稳定的住客标识，未登录时为 nil
func (s *Session) GuestID() *string {
	if s == nil || s.Subject == "" {
		return nil
	}
	id := s.Subject
	return &id
}

type ctxKey struct{}

// WithContext 将会话放入 context
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 从 context 取出会话，不存在时返回匿名会话
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}
