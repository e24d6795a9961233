package service

import (
	"context"

	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/Payphone-Digital/vidtube/internal/model"
	"github.com/Payphone-Digital/vidtube/pkg/media"
)

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByLogin(ctx context.Context, username, email string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	SetRefreshTokenHash(ctx context.Context, id uint, hash *string) error
	SwapRefreshTokenHash(ctx context.Context, id uint, oldHash, newHash string) (bool, error)
	GetChannelProfile(ctx context.Context, username string, viewerID uint) (*model.ChannelProfile, error)
}

// VideoStore is implemented by repository.VideoRepository.
type VideoStore interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id uint) (*model.Video, error)
	List(ctx context.Context, filter model.VideoFilter) ([]model.Video, int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

// SubscriptionStore is implemented by repository.SubscriptionRepository.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error)
}

// MediaGateway is implemented by media.Gateway.
type MediaGateway interface {
	Upload(ctx context.Context, localPath string, kind media.Kind) (*media.UploadResult, error)
	Destroy(ctx context.Context, key string) error
}

// OwnerCache drops cached entries that embed a user's public profile.
type OwnerCache interface {
	InvalidateOwner(ctx context.Context, ownerID uint)
}

// VideoCache holds rendered videos by id.
type VideoCache interface {
	Get(ctx context.Context, id uint) (*dto.VideoResponse, bool)
	Set(ctx context.Context, video *dto.VideoResponse)
	Invalidate(ctx context.Context, id uint)
}
