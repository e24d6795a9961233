package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Payphone-Digital/vidtube/internal/dto"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/metrics"
	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/Payphone-Digital/vidtube/pkg/media"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	users  UserStore
	tokens *TokenService
	media  MediaGateway
	owners OwnerCache
}

// NewUserService wires the user flows. owners may be nil when nothing caches
// owner details.
func NewUserService(users UserStore, tokens *TokenService, gateway MediaGateway, owners OwnerCache) *UserService {
	if owners == nil {
		owners = noopOwnerCache{}
	}
	return &UserService{
		users:  users,
		tokens: tokens,
		media:  gateway,
		owners: owners,
	}
}

// LoginResult is a signed-in user with a fresh token pair.
type LoginResult struct {
	User   dto.UserResponse
	Tokens *TokenPair
}

func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest, files dto.RegisterFiles) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Register")

	fullname := strings.TrimSpace(req.Fullname)
	email := normalize(req.Email)
	username := normalize(req.Username)
	if fullname == "" || email == "" || username == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperrors.ErrMissingFields
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email, 0)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if exists {
		logger.InfoWithContext(ctx, "Registration rejected, user exists").
			String("username", username).
			Log()
		return nil, apperrors.ErrUserExists
	}

	if strings.TrimSpace(files.AvatarPath) == "" {
		return nil, apperrors.ErrAvatarRequired
	}

	avatar, err := s.media.Upload(ctx, files.AvatarPath, media.KindImage)
	if err != nil {
		logger.ErrorWithContext(ctx, "Avatar upload failed").
			String("username", username).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrAvatarUpload, err)
	}
	uploaded := []string{avatar.Key}

	user := &model.User{
		Username:  username,
		Email:     email,
		Fullname:  fullname,
		Avatar:    avatar.URL,
		AvatarKey: avatar.Key,
	}

	if strings.TrimSpace(files.CoverImagePath) != "" {
		cover, err := s.media.Upload(ctx, files.CoverImagePath, media.KindImage)
		if err != nil {
			logger.WarnWithContext(ctx, "Cover image upload failed, registering without it").
				String("username", username).
				Err(err).
				Log()
		} else {
			user.CoverImage = cover.URL
			user.CoverImageKey = cover.Key
			uploaded = append(uploaded, cover.Key)
		}
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		s.destroyAll(ctx, uploaded)
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	user.Password = hashed

	if err := s.users.Create(ctx, user); err != nil {
		s.destroyAll(ctx, uploaded)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		Uint("target_id", user.ID).
		String("username", user.Username).
		Log()

	response := toUserResponse(user)
	return &response, nil
}

func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (*LoginResult, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Login")

	username := normalize(req.Username)
	email := normalize(req.Email)
	if username == "" && email == "" {
		return nil, apperrors.ErrLoginIdentifier
	}

	user, err := s.users.GetByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthEventsTotal.WithLabelValues("login", "unknown_user").Inc()
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !checkPassword(user.Password, req.Password) {
		metrics.AuthEventsTotal.WithLabelValues("login", "bad_password").Inc()
		logger.LogAuth(user.ID, "login", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues("login", "success").Inc()
	logger.LogAuth(user.ID, "login", true)

	return &LoginResult{User: toUserResponse(user), Tokens: tokens}, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "Logout")

	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	logger.LogAuth(userID, "logout", true)
	return nil
}

func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrUnauthorized
	}

	pair, _, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ChangePassword")

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if !checkPassword(user.Password, req.OldPassword) {
		return apperrors.ErrInvalidOldPassword
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateFields(ctx, userID, map[string]any{"password": hashed}); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password changed").Log()
	return nil
}

func (s *UserService) GetCurrentUser(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "GetCurrentUser")

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := toUserResponse(user)
	return &response, nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID uint, req dto.UpdateAccountRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateAccount")

	fullname := strings.TrimSpace(req.Fullname)
	email := normalize(req.Email)
	if fullname == "" || email == "" {
		return nil, apperrors.ErrMissingFields
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, "", email, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if taken {
		return nil, apperrors.ErrEmailTaken
	}

	err = s.users.UpdateFields(ctx, userID, map[string]any{
		"fullname": fullname,
		"email":    email,
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apperrors.ErrEmailTaken
	case err != nil:
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.owners.InvalidateOwner(ctx, userID)
	return s.GetCurrentUser(ctx, userID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateAvatar")
	return s.replaceImage(ctx, userID, localPath, imageSlot{
		urlColumn:   "avatar",
		keyColumn:   "avatar_key",
		oldKey:      func(u *model.User) string { return u.AvatarKey },
		errRequired: apperrors.ErrAvatarRequired,
		errUpload:   apperrors.ErrAvatarUpload,
	})
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "UpdateCoverImage")
	return s.replaceImage(ctx, userID, localPath, imageSlot{
		urlColumn:   "cover_image",
		keyColumn:   "cover_image_key",
		oldKey:      func(u *model.User) string { return u.CoverImageKey },
		errRequired: apperrors.ErrCoverImageRequired,
		errUpload:   apperrors.ErrCoverImageUpload,
	})
}

func (s *UserService) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*dto.ChannelProfileResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "GetChannelProfile")

	username = normalize(username)
	if username == "" {
		return nil, apperrors.ErrUsernameMissing
	}

	profile, err := s.users.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChannelNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := toChannelProfileResponse(profile)
	return &response, nil
}

// Authenticate resolves an access token to its user. The returned user has
// the password and refresh digest cleared.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Authenticate")

	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.Password = ""
	user.RefreshTokenHash = nil
	return user, nil
}

type imageSlot struct {
	urlColumn   string
	keyColumn   string
	oldKey      func(*model.User) string
	errRequired *apperrors.DomainError
	errUpload   *apperrors.DomainError
}

func (s *UserService) replaceImage(ctx context.Context, userID uint, localPath string, slot imageSlot) (*dto.UserResponse, error) {
	if strings.TrimSpace(localPath) == "" {
		return nil, slot.errRequired
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := slot.oldKey(user)

	uploaded, err := s.media.Upload(ctx, localPath, media.KindImage)
	if err != nil {
		return nil, apperrors.WrapError(slot.errUpload, err)
	}

	err = s.users.UpdateFields(ctx, userID, map[string]any{
		slot.urlColumn: uploaded.URL,
		slot.keyColumn: uploaded.Key,
	})
	if err != nil {
		s.destroyAll(ctx, []string{uploaded.Key})
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.destroyAll(ctx, []string{previous})
	s.owners.InvalidateOwner(ctx, userID)
	return s.GetCurrentUser(ctx, userID)
}

func (s *UserService) loadUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return user, nil
}

// destroyAll removes objects best-effort; failures are only logged.
func (s *UserService) destroyAll(ctx context.Context, keys []string) {
	destroyBestEffort(ctx, s.media, keys)
}

func destroyBestEffort(ctx context.Context, gateway MediaGateway, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := gateway.Destroy(ctx, key); err != nil {
			logger.WarnWithContext(ctx, "Orphaned media object").
				String("key", key).
				Err(err).
				Log()
		}
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// hashPassword hashes password using bcrypt
func hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedPassword), nil
}

// checkPassword verifies password against hash
func checkPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
