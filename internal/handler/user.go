package handler

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/Payphone-Digital/vidtube/internal/middleware"
	"github.com/Payphone-Digital/vidtube/internal/service"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
	uploads     *Uploads
}

func NewUserHandler(userService *service.UserService, uploads *Uploads) *UserHandler {
	return &UserHandler{userService: userService, uploads: uploads}
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ChangePassword")

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(ctx, middleware.CurrentUserID(c), req); err != nil {
		logger.WarnWithContext(ctx, "Password change failed").Err(err).Log()
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{}, constants.MsgPasswordChanged)
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CurrentUser")

	user, err := h.userService.GetCurrentUser(ctx, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user, constants.MsgCurrentUser)
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateAccount")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateAccount(ctx, middleware.CurrentUserID(c), req)
	if err != nil {
		logger.WarnWithContext(ctx, "Account update failed").Err(err).Log()
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user, constants.MsgAccountUpdated)
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.replaceImage(c, "UpdateAvatar", constants.FormFieldAvatar, h.userService.UpdateAvatar, constants.MsgAvatarUpdated)
}

func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.replaceImage(c, "UpdateCoverImage", constants.FormFieldCoverImage, h.userService.UpdateCoverImage, constants.MsgCoverImageUpdated)
}

type imageUpdater func(ctx context.Context, userID uint, localPath string) (*dto.UserResponse, error)

func (h *UserHandler) replaceImage(c *gin.Context, function, field string, update imageUpdater, message string) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", function)

	h.uploads.Limit(c)
	path, err := h.uploads.Save(c, field)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to stage image upload").String("field", field).Err(err).Log()
		respondBindError(c, err)
		return
	}
	defer h.uploads.Cleanup(ctx, path)

	user, err := update(ctx, middleware.CurrentUserID(c), path)
	if err != nil {
		logger.WarnWithContext(ctx, "Image update failed").String("field", field).Err(err).Log()
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user, message)
}

// ChannelProfile is public. When a session is present isSubscribed reflects
// the requester.
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ChannelProfile")

	profile, err := h.userService.GetChannelProfile(ctx, c.Param("username"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, profile, constants.MsgChannelFetched)
}
