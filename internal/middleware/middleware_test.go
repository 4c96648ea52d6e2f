package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/cache"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/jwt"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/session"
)

const adminEmail = "admin@hotel.local"

func init() {
	gin.SetMode(gin.TestMode)
}

func testManager() *jwt.Manager {
	return jwt.NewManager(&jwt.Config{Secret: "test-secret", Issuer: "hotel-identity", ExpireTime: time.Hour})
}

func token(t *testing.T, m *jwt.Manager, sub, email string) string {
	tok, _, err := m.Generate(sub, email)
	require.NoError(t, err)
	return tok
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== Identity 测试 ====================

func identityRouter(t *testing.T, required bool) (*gin.Engine, *jwt.Manager, **session.Session) {
	m := testManager()
	var seen *session.Session
	r := gin.New()
	r.Use(Identity(&IdentityConfig{JWTManager: m, AdminEmail: adminEmail, Required: required}))
	r.GET("/me", func(c *gin.Context) {
		seen = GetSession(c)
		assert.Equal(t, seen, session.FromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	return r, m, &seen
}

func TestIdentity_Anonymous(t *testing.T) {
	r, _, seen := identityRouter(t, false)

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, *seen)
	assert.False(t, (*seen).IsAuthenticated())
}

func TestIdentity_Required(t *testing.T) {
	r, _, _ := identityRouter(t, true)

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentity_ValidToken(t *testing.T) {
	r, m, seen := identityRouter(t, true)

	w := perform(r, http.MethodGet, "/me", map[string]string{
		"Authorization": "Bearer " + token(t, m, "sub-1", "Admin@Hotel.Local"),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sub-1", (*seen).Subject)
	assert.True(t, (*seen).IsAdmin)
}

func TestIdentity_QueryToken(t *testing.T) {
	r, m, seen := identityRouter(t, true)

	w := perform(r, http.MethodGet, "/me?token="+token(t, m, "sub-2", "ada@example.com"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, (*seen).IsAdmin)
}

func TestIdentity_InvalidTokenRejectedEvenWhenOptional(t *testing.T) {
	r, _, _ := identityRouter(t, false)

	w := perform(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ==================== RequireAdmin 测试 ====================

func TestRequireAdmin(t *testing.T) {
	m := testManager()
	r := gin.New()
	r.Use(Identity(&IdentityConfig{JWTManager: m, AdminEmail: adminEmail}), RequireAdmin())
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		email  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"guest", "ada@example.com", http.StatusForbidden},
		{"admin", adminEmail, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.email != "" {
				headers["Authorization"] = "Bearer " + token(t, m, "sub", tt.email)
			}
			w := perform(r, http.MethodGet, "/admin", headers)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

// ==================== RateLimit 测试 ====================

func TestBookingRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := gin.New()
	r.Use(BookingRateLimit(cache.NewStore(client), 2, time.Minute))
	r.POST("/book", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/book", nil).Code)
	w := perform(r, http.MethodPost, "/book", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, http.MethodPost, "/book", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/book", nil).Code)
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.Use(BookingRateLimit(nil, 1, time.Minute))
	r.POST("/book", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/book", nil).Code)
	}
}

// ==================== CORS 测试 ====================

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSFromConfig(&config.CORSConfig{AllowedOrigins: []string{"https://admin.hotel.local"}, MaxAge: 600})))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://admin.hotel.local"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.hotel.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	w = perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", map[string]string{"Origin": "https://any.example"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// ==================== 通用中间件 测试 ====================

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(r, http.MethodGet, "/x", map[string]string{"X-Request-ID": "req-1"})
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = perform(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "服务器内部错误")
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	w := perform(r, http.MethodGet, "/ip", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"})
	assert.Equal(t, "203.0.113.9", w.Body.String())

	w = perform(r, http.MethodGet, "/ip", map[string]string{"X-Real-IP": "198.51.100.4"})
	assert.Equal(t, "198.51.100.4", w.Body.String())
}

func TestRequestSizeLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimiter(4))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.ContentLength = 10
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTracing_SkipsPathsAndRecordsNoTraceWithoutProvider(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(&TracingConfig{ServiceName: "test", SkipPaths: []string{"/health"}}))
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, GetTraceID(c)) })
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetTraceID(c)) })

	assert.Empty(t, perform(r, http.MethodGet, "/health", nil).Body.String())
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/x", nil).Code)
}
