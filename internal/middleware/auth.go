// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/jwt"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
)

// 上下文键
const (
	ContextKeySession = "session"
	ContextKeyClaims  = "claims"
)

// IdentityConfig 身份中间件配置
type IdentityConfig struct {
	JWTManager *jwt.Manager
	AdminEmail string
	// Required 为 true 时没有令牌直接返回 401
	Required bool
}

// Identity 解析身份令牌并把会话放入上下文
// 携带了无效令牌的请求一律拒绝，未携带令牌时按 Required 决定放行为匿名会话或拒绝
func Identity(config *IdentityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			if config.Required {
				response.Unauthorized(c, "请先登录")
				c.Abort()
				return
			}
			setSession(c, session.Anonymous())
			c.Next()
			return
		}

		claims, err := config.JWTManager.Parse(token)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				response.Unauthorized(c, "登录已过期，请重新登录")
			} else {
				response.Unauthorized(c, "无效的令牌")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		setSession(c, session.New(claims.Subject, claims.Email, config.AdminEmail))
		c.Next()
	}
}

// RequireAdmin 仅允许管理员邮箱访问，需在 Identity 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if !sess.IsAuthenticated() {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !sess.IsAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

func setSession(c *gin.Context, sess *session.Session) {
	c.Set(ContextKeySession, sess)
	c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), sess))
}

// extractToken 从 Authorization 头获取令牌，WebSocket 握手无法带头时从查询参数获取
func extractToken(c *gin.Context) string {
	if token, ok := jwt.ExtractBearer(c.GetHeader("Authorization")); ok {
		return token
	}
	return strings.TrimSpace(c.Query("token"))
}

// GetSession 从上下文获取会话，未设置时返回匿名会话
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(ContextKeySession); ok {
		if sess, ok := v.(*session.Session); ok && sess != nil {
			return sess
		}
	}
	return session.Anonymous()
}

// GetClaims 从上下文获取令牌声明
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}
