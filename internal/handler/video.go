package handler

import (
	"net/http"
	"strconv"
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

type VideoHandler struct {
	videoService *service.VideoService
	uploads      *Uploads
}

func NewVideoHandler(videoService *service.VideoService, uploads *Uploads) *VideoHandler {
	return &VideoHandler{videoService: videoService, uploads: uploads}
}

func (h *VideoHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VideoList")

	pagination := constants.ParsePaginationParams(c)
	query := dto.VideoListQuery{
		Page:     pagination.Page,
		Limit:    pagination.Limit,
		Query:    c.Query(constants.QueryParamQuery),
		SortBy:   c.DefaultQuery(constants.QueryParamSortBy, constants.DefaultVideoSortBy),
		SortType: c.DefaultQuery(constants.QueryParamSortType, constants.OrderDesc),
	}

	if raw := strings.TrimSpace(c.Query(constants.QueryParamUserID)); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, apperrors.ErrInvalidUserID)
			return
		}
		query.UserID = uint(userID)
	}

	videos, total, err := h.videoService.List(ctx, query, middleware.CurrentUserID(c))
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to list videos").Err(err).Log()
		respondError(c, err)
		return
	}

	logger.DebugWithContext(ctx, "Videos fetched").
		Int("page", pagination.Page).
		Int("limit", pagination.Limit).
		Int64("total", total).
		Int("returned_count", len(videos)).
		Log()

	respondSuccess(c, http.StatusOK, constants.BuildListResponse(total, pagination, videos), constants.MsgVideosFetched)
}

func (h *VideoHandler) Publish(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VideoPublish")

	h.uploads.Limit(c)

	var req dto.PublishVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	paths, err := h.uploads.SaveAll(c, constants.FormFieldVideoFile, constants.FormFieldThumbnail)
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to stage video uploads").Err(err).Log()
		respondBindError(c, err)
		return
	}
	defer h.uploads.Cleanup(ctx, paths...)

	video, err := h.videoService.Publish(ctx, middleware.CurrentUserID(c), req, dto.PublishVideoFiles{
		VideoPath:     paths[0],
		ThumbnailPath: paths[1],
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Video publish failed").Err(err).Log()
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, video, constants.MsgVideoPublished)
}

func (h *VideoHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VideoGetByID")

	id, ok := parseID(c, "videoId")
	if !ok {
		respondError(c, apperrors.ErrInvalidVideoID)
		return
	}

	video, err := h.videoService.GetByID(ctx, id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, video, constants.MsgVideoFetched)
}

// Update accepts JSON or multipart. Only multipart can carry a new thumbnail.
func (h *VideoHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VideoUpdate")

	id, ok := parseID(c, "videoId")
	if !ok {
		respondError(c, apperrors.ErrInvalidVideoID)
		return
	}

	h.uploads.Limit(c)

	var req dto.UpdateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	thumbnail, err := h.uploads.Save(c, constants.FormFieldThumbnail)
	if err != nil {
		respondBindError(c, err)
		return
	}
	defer h.uploads.Cleanup(ctx, thumbnail)

	video, err := h.videoService.Update(ctx, id, middleware.CurrentUserID(c), req, thumbnail)
	if err != nil {
		logger.WarnWithContext(ctx, "Video update failed").Uint("video_id", id).Err(err).Log()
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, video, constants.MsgVideoUpdated)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VideoDelete")

	id, ok := parseID(c, "videoId")
	if !ok {
		respondError(c, apperrors.ErrInvalidVideoID)
		return
	}

	if err := h.videoService.Delete(ctx, id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{}, constants.MsgVideoDeleted)
}

func (h *VideoHandler) TogglePublish(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VideoTogglePublish")

	id, ok := parseID(c, "videoId")
	if !ok {
		respondError(c, apperrors.ErrInvalidVideoID)
		return
	}

	video, err := h.videoService.TogglePublish(ctx, id, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, video, constants.MsgPublishToggled)
}
