package handler

import (
	"net/http"
	"strings"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	"github.com/Payphone-Digital/vidtube/internal/dto"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/middleware"
	"github.com/Payphone-Digital/vidtube/internal/service"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *service.UserService
	cookies     *Cookies
	uploads     *Uploads
}

func NewAuthHandler(userService *service.UserService, cookies *Cookies, uploads *Uploads) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cookies:     cookies,
		uploads:     uploads,
	}
}

// Register creates an account from a multipart form with an avatar and an
// optional cover image.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	h.uploads.Limit(c)

	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid register request").Err(err).Log()
		respondBindError(c, err)
		return
	}

	paths, err := h.uploads.SaveAll(c, constants.FormFieldAvatar, constants.FormFieldCoverImage)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to stage register uploads").Err(err).Log()
		respondBindError(c, err)
		return
	}
	defer h.uploads.Cleanup(ctx, paths...)

	user, err := h.userService.Register(ctx, req, dto.RegisterFiles{
		AvatarPath:     paths[0],
		CoverImagePath: paths[1],
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			String("username", req.Username).
			Err(err).
			Log()
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, user, constants.MsgUserRegistered)
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").Err(err).Log()
		respondBindError(c, err)
		return
	}

	result, err := h.userService.Login(ctx, req)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			String("username", req.Username).
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, err)
		return
	}

	h.cookies.Set(c, result.Tokens)

	respondSuccess(c, http.StatusOK, dto.LoginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, constants.MsgUserLoggedIn)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Logout")

	userID := middleware.CurrentUserID(c)
	if err := h.userService.Logout(ctx, userID); err != nil {
		logger.ErrorWithContext(ctx, "Failed to logout user").Uint("user_id", userID).Err(err).Log()
		respondError(c, err)
		return
	}

	h.cookies.Clear(c)
	respondSuccess(c, http.StatusOK, gin.H{}, constants.MsgUserLoggedOut)
}

// RefreshToken rotates the session. The token comes from the refreshToken
// cookie or the JSON body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "RefreshToken")

	token, _ := c.Cookie(constants.CookieRefreshToken)
	if strings.TrimSpace(token) == "" {
		var req dto.RefreshTokenRequest
		if err := c.ShouldBind(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if strings.TrimSpace(token) == "" {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	pair, err := h.userService.RefreshToken(ctx, token)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").Err(err).Log()
		respondError(c, err)
		return
	}

	h.cookies.Set(c, pair)
	respondSuccess(c, http.StatusOK, dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, constants.MsgTokenRefreshed)
}
