package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "VideoCreate")

	start := time.Now()
	if err := r.db.WithContext(ctx).Omit("Owner").Create(video).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create video").
			Uint("owner_id", video.OwnerID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Video created").
		Uint("video_id", video.ID).
		Duration(time.Since(start)).
		Log()
	return nil
}

// GetByID loads a video with its owner.
func (r *VideoRepository) GetByID(ctx context.Context, id uint) (*model.Video, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "VideoGetByID")

	var video model.Video
	if err := r.db.WithContext(ctx).Preload("Owner").First(&video, id).Error; err != nil {
		logger.DebugWithContext(ctx, "Video lookup failed").
			Uint("video_id", id).
			Err(err).
			Log()
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepository) List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "VideoList")

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	query := r.db.WithContext(ctx).Model(&model.Video{})

	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if !filter.IncludeHidden {
		query = query.Where("is_published = ?", true)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count videos").
			Err(err).
			Log()
		return nil, 0, err
	}

	order := filter.SortColumn + " ASC"
	if filter.Descending {
		order = filter.SortColumn + " DESC"
	}

	var videos []model.Video
	err := query.Preload("Owner").
		Order(order).
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&videos).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch videos").
			String("query", filter.Query).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Videos retrieved").
		Int64("total", total).
		Int("returned_count", len(videos)).
		Duration(time.Since(start)).
		Log()

	return videos, total, nil
}

// UpdateFields patches the given columns of one video.
func (r *VideoRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "VideoUpdateFields")

	result := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update video").
			Uint("video_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the row for good; its media is gone by then.
func (r *VideoRepository) Delete(ctx context.Context, id uint) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "VideoDelete")

	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Video{}, id)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete video").
			Uint("video_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
