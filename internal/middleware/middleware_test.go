package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/dto"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(r, req).Code, "buckets are per client")
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	start := time.Now()
	rl.limiterFor("a", start)
	rl.limiterFor("b", start.Add(limiterIdleTTL+time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	_, ok := rl.visitors["a"]
	assert.False(t, ok)
	assert.Len(t, rl.visitors, 1)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"statusCode":500,"message":"Internal server error","success":false,"errors":[]}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://app.example.com"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS("*"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://any.example.com")
	assert.Equal(t, "https://any.example.com", serve(r, req).Header().Get("Access-Control-Allow-Origin"))
}

func TestContextChain(t *testing.T) {
	r := gin.New()
	r.Use(DefaultContextMiddleware("api", time.Minute, time.Hour)...)
	r.GET("/ctx", func(c *gin.Context) {
		ctx := c.Request.Context()
		_, hasDeadline := ctx.Deadline()
		c.JSON(http.StatusOK, gin.H{
			"request_id":     ctxutil.GetRequestID(ctx),
			"correlation_id": ctxutil.GetCorrelationID(ctx),
			"module":         ctxutil.GetModule(ctx),
			"deadline":       hasDeadline,
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"request_id":"req-1","correlation_id":"req-1","module":"api","deadline":true}`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/ctx", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestContextMiddleware_UploadDeadline(t *testing.T) {
	r := gin.New()
	r.Use(ContextMiddleware("api", time.Minute, time.Hour))
	r.POST("/deadline", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		c.String(http.StatusOK, "%d", int(time.Until(deadline).Round(time.Minute).Minutes()))
	})

	req := httptest.NewRequest(http.MethodPost, "/deadline", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, "1", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodPost, "/deadline", strings.NewReader("--x--\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	assert.Equal(t, "60", serve(r, req).Body.String())
}

func TestValidateRequestBody(t *testing.T) {
	r := gin.New()
	r.POST("/account",
		NewValidationMiddleware().ValidateRequestBody(func() any { return &dto.UpdateAccountRequest{} }),
		func(c *gin.Context) {
			var req dto.UpdateAccountRequest
			require.NoError(t, c.ShouldBindJSON(&req))
			c.JSON(http.StatusOK, req)
		})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(r, req)
	}

	w := post(`{"fullname":"Alice","email":"alice@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(`{"fullname":"Alice","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email is not valid")

	w = post(`{"fullname":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "malformed JSON body")

	w = post(``)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "fullname is required")
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	assert.True(t, isSuspiciousUserAgent("sqlmap/1.7"))
	assert.False(t, isSuspiciousUserAgent("Mozilla/5.0"))
}
