package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medcart/models"
	"medcart/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	r.GET("/admin", AuthMiddleware(secret), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()
	token, err := utils.GenerateToken(secret, time.Hour, "user-1", "a@b.co", models.RoleCustomer)
	require.NoError(t, err)

	w := do(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer nope").Code)

	expired, err := utils.GenerateToken(secret, -time.Minute, "user-1", "a@b.co", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer "+expired).Code)

	forged, err := utils.GenerateToken("other-secret", time.Hour, "user-1", "a@b.co", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "Bearer "+forged).Code)
}

func TestAdminMiddleware(t *testing.T) {
	r := newRouter()

	customer, _ := utils.GenerateToken(secret, time.Hour, "user-1", "a@b.co", models.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+customer).Code)

	admin, _ := utils.GenerateToken(secret, time.Hour, "user-2", "admin@b.co", models.RoleAdmin)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+admin).Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.GET("/maps", limiter.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/maps", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}

func TestRateLimiterForgetsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	now = now.Add(visitorTTL + time.Second)
	limiter.getLimiter("10.0.0.2")

	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestRequestLoggerRecoversPanics(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
