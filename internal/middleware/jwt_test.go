package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	tokens map[string]*model.User
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if user, ok := f.tokens[token]; ok {
		return user, nil
	}
	return nil, apperrors.ErrInvalidToken
}

func newSessionEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		ctxID, _ := ctxutil.GetUserID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c), "ctx_user_id": ctxID})
	})
	return r
}

func sessionMiddleware() *JWTMiddleware {
	alice := &model.User{Model: gorm.Model{ID: 7}, Username: "alice"}
	return NewJWTMiddleware(fakeAuthenticator{tokens: map[string]*model.User{"good": alice}})
}

func TestRequireAuth(t *testing.T) {
	r := newSessionEngine(sessionMiddleware().RequireAuth())

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: "good"})
		}, http.StatusOK},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"bad bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"wrong scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized},
		{"cookie wins", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: "good"})
			req.Header.Set("Authorization", "Bearer nope")
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7,"ctx_user_id":7}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireAuth_InvalidTokenMessage(t *testing.T) {
	r := newSessionEngine(sessionMiddleware().RequireAuth())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid access token")
}

func TestOptionalAuth(t *testing.T) {
	r := newSessionEngine(sessionMiddleware().OptionalAuth())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"ctx_user_id":0}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"user_id":7,"ctx_user_id":7}`, w.Body.String())
}
