package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	"github.com/Payphone-Digital/vidtube/internal/dto"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/Payphone-Digital/vidtube/pkg/media"
	"gorm.io/gorm"
)

type VideoService struct {
	videos VideoStore
	media  MediaGateway
	cache  VideoCache
}

// NewVideoService wires the video store and media gateway. cache may be nil.
func NewVideoService(videos VideoStore, gateway MediaGateway, cache VideoCache) *VideoService {
	if cache == nil {
		cache = noopVideoCache{}
	}
	return &VideoService{
		videos: videos,
		media:  gateway,
		cache:  cache,
	}
}

// List returns one page of videos. Unpublished videos are only included
// when a viewer lists their own uploads.
func (s *VideoService) List(ctx context.Context, query dto.VideoListQuery, viewerID uint) ([]dto.VideoResponse, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "VideoList")

	column, ok := constants.VideoSortColumns[query.SortBy]
	if !ok {
		column = constants.VideoSortColumns[constants.DefaultVideoSortBy]
	}

	filter := model.VideoFilter{
		Query:         strings.TrimSpace(query.Query),
		OwnerID:       query.UserID,
		IncludeHidden: query.UserID != 0 && query.UserID == viewerID,
		SortColumn:    column,
		Descending:    !strings.EqualFold(query.SortType, constants.OrderAsc),
		Limit:         min(max(query.Limit, constants.MinLimit), constants.MaxLimit),
		Offset:        constants.PageOffset(query.Page, query.Limit),
	}

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	docs := make([]dto.VideoResponse, 0, len(videos))
	for i := range videos {
		docs = append(docs, toVideoResponse(&videos[i]))
	}
	return docs, total, nil
}

func (s *VideoService) Publish(ctx context.Context, ownerID uint, req dto.PublishVideoRequest, files dto.PublishVideoFiles) (*dto.VideoResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "VideoPublish")

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, apperrors.ErrVideoFieldsEmpty
	}
	if strings.TrimSpace(files.VideoPath) == "" || strings.TrimSpace(files.ThumbnailPath) == "" {
		return nil, apperrors.ErrVideoFilesMissing
	}

	videoFile, err := s.media.Upload(ctx, files.VideoPath, media.KindVideo)
	if err != nil {
		logger.ErrorWithContext(ctx, "Video upload failed").Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrVideoUpload, err)
	}

	thumbnail, err := s.media.Upload(ctx, files.ThumbnailPath, media.KindImage)
	if err != nil {
		logger.ErrorWithContext(ctx, "Thumbnail upload failed").Err(err).Log()
		destroyBestEffort(ctx, s.media, []string{videoFile.Key})
		return nil, apperrors.WrapError(apperrors.ErrThumbnailUpload, err)
	}

	video := &model.Video{
		OwnerID:      ownerID,
		Title:        title,
		Description:  description,
		VideoFile:    videoFile.URL,
		VideoFileKey: videoFile.Key,
		Thumbnail:    thumbnail.URL,
		ThumbnailKey: thumbnail.Key,
		Duration:     videoFile.Duration,
		IsPublished:  true,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		destroyBestEffort(ctx, s.media, []string{videoFile.Key, thumbnail.Key})
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Video published").
		Uint("video_id", video.ID).
		Float64("duration", video.Duration).
		Log()

	if stored, err := s.videos.GetByID(ctx, video.ID); err == nil {
		video = stored
	}
	response := toVideoResponse(video)
	return &response, nil
}

// GetByID returns a video visible to viewerID.
func (s *VideoService) GetByID(ctx context.Context, id, viewerID uint) (*dto.VideoResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "VideoGetByID")

	video, ok := s.cache.Get(ctx, id)
	if !ok {
		stored, err := s.videos.GetByID(ctx, id)
		if err != nil {
			return nil, videoLookupError(err)
		}
		response := toVideoResponse(stored)
		video = &response
		s.cache.Set(ctx, video)
	}

	if !video.IsPublished && video.Owner.ID != viewerID {
		return nil, apperrors.ErrVideoNotFound
	}
	return video, nil
}

// Update merges the non-blank fields of req into the video and optionally
// swaps its thumbnail.
func (s *VideoService) Update(ctx context.Context, id, userID uint, req dto.UpdateVideoRequest, thumbnailPath string) (*dto.VideoResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "VideoUpdate")

	video, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if value, ok := mergeable(req.Title); ok {
		fields["title"] = value
	}
	if value, ok := mergeable(req.Description); ok {
		fields["description"] = value
	}

	var thumbnail *media.UploadResult
	if strings.TrimSpace(thumbnailPath) != "" {
		thumbnail, err = s.media.Upload(ctx, thumbnailPath, media.KindImage)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrThumbnailUpload, err)
		}
		fields["thumbnail"] = thumbnail.URL
		fields["thumbnail_key"] = thumbnail.Key
	}

	if len(fields) == 0 {
		response := toVideoResponse(video)
		return &response, nil
	}

	if err := s.videos.UpdateFields(ctx, id, fields); err != nil {
		if thumbnail != nil {
			destroyBestEffort(ctx, s.media, []string{thumbnail.Key})
		}
		return nil, videoLookupError(err)
	}
	s.cache.Invalidate(ctx, id)

	if thumbnail != nil {
		destroyBestEffort(ctx, s.media, []string{video.ThumbnailKey})
	}

	return s.reload(ctx, id)
}

// Delete removes remote media first. If that fails the record stays so the
// call can be retried.
func (s *VideoService) Delete(ctx context.Context, id, userID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "VideoDelete")

	video, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	for _, key := range []string{video.VideoFileKey, video.ThumbnailKey} {
		if err := s.media.Destroy(ctx, key); err != nil {
			logger.ErrorWithContext(ctx, "Failed to delete video media").
				Uint("video_id", id).
				String("key", key).
				Err(err).
				Log()
			return apperrors.WrapError(apperrors.ErrMediaDelete, err)
		}
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrVideoNotFound
		}
		logger.ErrorWithContext(ctx, "Video media removed but record delete failed").
			Uint("video_id", id).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	s.cache.Invalidate(ctx, id)

	logger.InfoWithContext(ctx, "Video deleted").Uint("video_id", id).Log()
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, id, userID uint) (*dto.VideoResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "VideoTogglePublish")

	video, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.videos.UpdateFields(ctx, id, map[string]any{"is_published": !video.IsPublished}); err != nil {
		return nil, videoLookupError(err)
	}
	s.cache.Invalidate(ctx, id)

	return s.reload(ctx, id)
}

func (s *VideoService) loadOwned(ctx context.Context, id, userID uint) (*model.Video, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, videoLookupError(err)
	}
	if video.OwnerID != userID {
		logger.WarnWithContext(ctx, "Video change rejected for non-owner").
			Uint("video_id", id).
			Log()
		return nil, apperrors.ErrNotVideoOwner
	}
	return video, nil
}

func (s *VideoService) reload(ctx context.Context, id uint) (*dto.VideoResponse, error) {
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, videoLookupError(err)
	}
	response := toVideoResponse(video)
	return &response, nil
}

func videoLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrVideoNotFound
	}
	return apperrors.WrapError(apperrors.ErrInternal, err)
}

// mergeable reports whether an optional field should replace the stored value.
func mergeable(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}
