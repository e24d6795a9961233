package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "UserCreate")

	start := time.Now()
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("username", user.Username).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "User created").
		Uint("user_id", user.ID).
		Duration(time.Since(start)).
		Log()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "UserGetByID")

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, err
	}

	start := time.Now()
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		logger.DebugWithContext(ctx, "User lookup by id failed").
			Uint("lookup_id", id).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	return &user, nil
}

// GetByLogin finds a user by username or email. Either may be empty.
func (r *UserRepository) GetByLogin(ctx context.Context, username, email string) (*model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "UserGetByLogin")

	query := r.db.WithContext(ctx)
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}

	start := time.Now()
	var user model.User
	if err := query.First(&user).Error; err != nil {
		logger.DebugWithContext(ctx, "User lookup by login failed").
			String("username", username).
			String("email", email).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	return &user, nil
}

// ExistsByUsernameOrEmail reports whether another account already owns
// the username or the email. excludeID skips the caller's own row.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "UserExists")

	query := r.db.WithContext(ctx).Model(&model.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("(username = ? OR email = ?)", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	default:
		query = query.Where("email = ?", email)
	}
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to check user existence").
			String("username", username).
			String("email", email).
			Err(err).
			Log()
		return false, err
	}

	return count > 0, nil
}

// UpdateFields patches the given columns. A missing row yields
// gorm.ErrRecordNotFound.
func (r *UserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "UserUpdateFields")

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user").
			Uint("target_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "User updated").
		Uint("target_id", id).
		Int("field_count", len(fields)).
		Duration(time.Since(start)).
		Log()
	return nil
}

// SetRefreshTokenHash overwrites the single refresh slot. nil clears it.
func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, id uint, hash *string) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "SetRefreshTokenHash")

	var value any = gorm.Expr("NULL")
	if hash != nil {
		value = *hash
	}

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token_hash", value)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SwapRefreshTokenHash replaces oldHash with newHash only if oldHash is
// still the stored value. It returns false when another request won.
func (r *UserRepository) SwapRefreshTokenHash(ctx context.Context, id uint, oldHash, newHash string) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "SwapRefreshTokenHash")

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND refresh_token_hash = ?", id, oldHash).
		Update("refresh_token_hash", newHash)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to rotate refresh token").
			Uint("target_id", id).
			Err(result.Error).
			Log()
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// GetChannelProfile loads a user together with both subscription counts and
// whether viewerID follows them, in one statement.
func (r *UserRepository) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*model.ChannelProfile, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "GetChannelProfile")

	start := time.Now()
	var profile model.ChannelProfile
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select(`users.id, users.username, users.email, users.fullname, users.avatar, users.cover_image,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = users.id) AS subscribers_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = users.id) AS channels_subscribed_to_count,
			EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = users.id AND s.subscriber_id = ?) AS is_subscribed`, viewerID).
		Where("users.username = ?", username).
		Limit(1).
		Scan(&profile)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Channel profile query failed").
			String("username", username).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Channel profile loaded").
		String("username", username).
		Int64("subscribers", profile.SubscribersCount).
		Duration(time.Since(start)).
		Log()
	return &profile, nil
}
