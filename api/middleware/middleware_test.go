package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/picshare/api/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func authRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, ok := GetUserID(c)
		if !ok {
			common.RespondError(c, http.StatusInternalServerError, "missing user")
			return
		}
		common.RespondSuccess(c, gin.H{"user_id": id, "role": c.GetString(ContextRoleKey)})
	})
	router.GET("/me", handlers...)
	return router
}

func doGet(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- 测试 JWT 认证 ---

func TestJWTAuth(t *testing.T) {
	valid := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"user_id": 42,
		"role":    "photographer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	legacy := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"id":  7,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
		"user_id": 42,
	})
	hs512 := signToken(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{
		"user_id": 42,
	})
	noUser := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"role": "admin",
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, `"user_id":42`},
		{"legacy id claim", "Bearer " + legacy, http.StatusOK, `"user_id":7`},
		{"default role", "Bearer " + legacy, http.StatusOK, `"role":"photographer"`},
		{"missing header", "", http.StatusUnauthorized, "No Authorization"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "format error"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "format error"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "invalid or expired"},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized, "invalid or expired"},
		{"other algorithm", "Bearer " + hs512, http.StatusUnauthorized, "invalid or expired"},
		{"no user claim", "Bearer " + noUser, http.StatusUnauthorized, "user_id not found"},
	}

	router := authRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(router, "/me", tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestJWTAuth_NoSecretConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWTAuth(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doGet(router, "/me", "Bearer abc")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// --- 测试角色授权 ---

func TestRequireRole(t *testing.T) {
	admin := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"user_id": 1, "role": "admin"})
	user := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"user_id": 2, "role": "photographer"})

	router := authRouter("admin")
	assert.Equal(t, http.StatusOK, doGet(router, "/me", "Bearer "+admin).Code)
	assert.Equal(t, http.StatusForbidden, doGet(router, "/me", "Bearer "+user).Code)
}

func TestRequireRole_NoRoleInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doGet(router, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- 测试请求 ID ---

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestIDKey))
	})

	w := doGet(router, "/ping", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestID_InErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/me", JWTAuth([]byte(testSecret)), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "req-401")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"req-401"`)
}

// --- 测试并发限制与指标 ---

func TestConcurrencyLimiter_RejectsWhenFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewConcurrencyLimiter(1)
	require.True(t, limiter.sem.TryAcquire(1))

	router := gin.New()
	router.GET("/busy", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusServiceUnavailable, doGet(router, "/busy", "").Code)

	limiter.sem.Release(1)
	assert.Equal(t, http.StatusOK, doGet(router, "/busy", "").Code)
}

func TestConcurrencyLimiter_ExemptPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewConcurrencyLimiter(1, "/health")
	require.True(t, limiter.sem.TryAcquire(1))
	defer limiter.sem.Release(1)

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/albums", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doGet(router, "/health", "").Code)
	w := doGet(router, "/api/albums", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestMetrics_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ResetMetrics()
	defer ResetMetrics()

	router := gin.New()
	router.Use(Metrics())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	doGet(router, "/ok", "")
	doGet(router, "/ok", "")
	doGet(router, "/fail", "")

	m := GetMetrics()
	assert.Equal(t, int64(3), m["request_count"])
	assert.Equal(t, int64(1), m["request_errors"])
}
