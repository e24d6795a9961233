package middleware

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

type JWTMiddleware struct {
	auth Authenticator
}

func NewJWTMiddleware(auth Authenticator) *JWTMiddleware {
	return &JWTMiddleware{auth: auth}
}

// RequireAuth resolves the session from the accessToken cookie or the bearer
// header and aborts with 401 when it is missing or invalid.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractAccessToken(c)
		if token == "" {
			logger.GetLogger().Warn("Missing access token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			abortWithError(c, err)
			return
		}

		attachUser(c, user)

		logger.GetLogger().Debug("User authenticated successfully",
			zap.Uint("user_id", user.ID),
			zap.String("path", c.Request.URL.Path))

		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never aborts.
func (m *JWTMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractAccessToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		attachUser(c, user)
		c.Next()
	}
}

// ExtractAccessToken prefers the cookie over the Authorization header.
func ExtractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader(constants.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, constants.BearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUserID returns the authenticated user id, or 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get(constants.GinKeyUserID); ok {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

func attachUser(c *gin.Context, user *model.User) {
	c.Set(constants.GinKeyUser, user)
	c.Set(constants.GinKeyUserID, user.ID)
	c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), user.ID))
}

func abortWithError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.AbortWithStatusJSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err)))
}
