package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
)

func setupRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.SilenceLoggers()
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   c.GetString(ContextUserID),
			"role":      c.GetString(ContextRole),
			"device_id": c.GetString(ContextDeviceID),
		})
	})
	router.GET("/test", handlers...)
	return router
}

func do(router *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.GenerateToken("user-1", models.RoleCustomer)
	require.NoError(t, err)
	router := setupRouter(AuthMiddleware(jwtManager))

	w := do(router, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")

	jwtManager.BlacklistToken(token)
	w = do(router, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	router := setupRouter(OptionalAuthMiddleware(jwtManager))

	w := do(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleCheck(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	router := setupRouter(AuthMiddleware(jwtManager), RoleCheck(models.RoleStaff))

	customer, _ := jwtManager.GenerateToken("u1", models.RoleCustomer)
	staff, _ := jwtManager.GenerateToken("u2", models.RoleStaff)
	admin, _ := jwtManager.GenerateToken("u3", models.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, do(router, map[string]string{"Authorization": "Bearer " + customer}).Code)
	assert.Equal(t, http.StatusOK, do(router, map[string]string{"Authorization": "Bearer " + staff}).Code)
	assert.Equal(t, http.StatusOK, do(router, map[string]string{"Authorization": "Bearer " + admin}).Code)
}

func TestDeviceMiddleware(t *testing.T) {
	router := setupRouter(DeviceMiddleware())

	assert.Equal(t, http.StatusBadRequest, do(router, nil).Code)

	w := do(router, map[string]string{DeviceHeader: "phone-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "phone-1")
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(time.Hour, 2)
	router := setupRouter(limiter.RateLimit())

	assert.Equal(t, http.StatusOK, do(router, nil).Code)
	assert.Equal(t, http.StatusOK, do(router, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, nil).Code)

	// IP lain punya bucket sendiri
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(CORSMiddlewares("https://cohee.hk"))
	router.OPTIONS("/test", CORSMiddlewares("https://cohee.hk"))

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cohee.hk", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), DeviceHeader)
}

func TestSecurityHeaders(t *testing.T) {
	w := do(setupRouter(SecurityHeaders(false)), nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = do(setupRouter(SecurityHeaders(true)), nil)
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
