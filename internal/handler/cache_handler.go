package handler

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheAdmin is implemented by the video caches.
type CacheAdmin interface {
	Invalidate(ctx context.Context, id uint)
	Purge(ctx context.Context) (int, error)
	Stats(ctx context.Context) map[string]any
}

type CacheHandler struct {
	cache CacheAdmin
}

func NewCacheHandler(cache CacheAdmin) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// GetCacheStats returns cache statistics
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	respondSuccess(c, http.StatusOK, h.cache.Stats(c.Request.Context()), constants.MsgCacheStats)
}

// InvalidateVideo drops one cached video so the next read hits the database.
func (h *CacheHandler) InvalidateVideo(c *gin.Context) {
	id, ok := parseID(c, "videoId")
	if !ok {
		respondError(c, apperrors.ErrInvalidVideoID)
		return
	}

	h.cache.Invalidate(c.Request.Context(), id)

	logger.GetLogger().Info("Video cache invalidated", zap.Uint("video_id", id))
	respondSuccess(c, http.StatusOK, gin.H{"videoId": id}, constants.MsgCacheInvalidated)
}

// PurgeVideos drops every cached video.
func (h *CacheHandler) PurgeVideos(c *gin.Context) {
	removed, err := h.cache.Purge(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.WrapError(apperrors.ErrInternal, err))
		return
	}

	logger.GetLogger().Info("Video cache purged", zap.Int("removed", removed))
	respondSuccess(c, http.StatusOK, gin.H{"removed": removed}, constants.MsgCachePurged)
}
