package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/Payphone-Digital/vidtube/config"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/metrics"
	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenStore is the slice of UserStore the token service needs.
type TokenStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	SetRefreshTokenHash(ctx context.Context, id uint, hash *string) error
	SwapRefreshTokenHash(ctx context.Context, id uint, oldHash, newHash string) (bool, error)
}

// AccessClaims carry the public identity of the bearer.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject, or 0 if it is malformed.
func (c *AccessClaims) UserID() uint {
	return subjectID(c.Subject)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// TokenService signs access and refresh tokens. Each account holds a single
// refresh slot storing the SHA-256 digest of its current refresh token.
type TokenService struct {
	store TokenStore
	cfg   config.JWTConfig
	now   func() time.Time
}

func NewTokenService(store TokenStore, cfg config.JWTConfig) *TokenService {
	return &TokenService{store: store, cfg: cfg, now: time.Now}
}

// Issue signs a fresh pair and stores its refresh digest, replacing any
// earlier one.
func (s *TokenService) Issue(ctx context.Context, user *model.User) (*TokenPair, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "TokenIssue")

	pair, err := s.sign(user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sign tokens").
			Uint("target_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrTokenGeneration, err)
	}

	digest := HashToken(pair.RefreshToken)
	if err := s.store.SetRefreshTokenHash(ctx, user.ID, &digest); err != nil {
		logger.ErrorWithContext(ctx, "Failed to persist refresh token").
			Uint("target_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrTokenGeneration, err)
	}

	user.RefreshTokenHash = &digest
	return pair, nil
}

// VerifyAccess checks signature, method and expiry of an access token.
func (s *TokenService) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, err := s.parse(token, s.cfg.AccessSecret, claims); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}
	if claims.UserID() == 0 {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// Rotate redeems a refresh token for a new pair. A token can be redeemed at
// most once; replays and stale tokens are rejected without issuing anything.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, *model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "TokenRotate")

	claims := &jwt.RegisteredClaims{}
	if _, err := s.parse(refreshToken, s.cfg.RefreshSecret, claims); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("refresh", "invalid").Inc()
		return nil, nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	userID := subjectID(claims.Subject)
	if userID == 0 {
		return nil, nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	presented := HashToken(refreshToken)
	if user.RefreshTokenHash == nil || !digestsEqual(*user.RefreshTokenHash, presented) {
		metrics.AuthEventsTotal.WithLabelValues("refresh", "reused").Inc()
		logger.WarnWithContext(ctx, "Refresh token does not match stored digest").
			Uint("target_id", user.ID).
			Log()
		return nil, nil, apperrors.ErrRefreshTokenUsed
	}

	pair, err := s.sign(user)
	if err != nil {
		return nil, nil, apperrors.WrapError(apperrors.ErrTokenGeneration, err)
	}

	next := HashToken(pair.RefreshToken)
	swapped, err := s.store.SwapRefreshTokenHash(ctx, user.ID, presented, next)
	if err != nil {
		return nil, nil, apperrors.WrapError(apperrors.ErrTokenGeneration, err)
	}
	if !swapped {
		metrics.AuthEventsTotal.WithLabelValues("refresh", "raced").Inc()
		return nil, nil, apperrors.ErrRefreshTokenUsed
	}

	user.RefreshTokenHash = &next
	metrics.AuthEventsTotal.WithLabelValues("refresh", "success").Inc()
	return pair, user, nil
}

// Revoke empties the refresh slot.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithFunction(ctx, "service", "TokenRevoke")

	if err := s.store.SetRefreshTokenHash(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

func (s *TokenService) sign(user *model.User) (*TokenPair, error) {
	now := s.now()
	subject := strconv.FormatUint(uint64(user.ID), 10)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		Fullname: user.Fullname,
		RegisteredClaims: s.registered(subject, now, s.cfg.AccessExpiry),
	})
	accessToken, err := access.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return nil, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, s.registered(subject, now, s.cfg.RefreshExpiry))
	refreshToken, err := refresh.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    s.cfg.AccessExpiry,
		RefreshTTL:   s.cfg.RefreshExpiry,
	}, nil
}

func (s *TokenService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) parse(token, secret string, claims jwt.Claims) (*jwt.Token, error) {
	if token == "" {
		return nil, errors.New("token is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	return jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, opts...)
}

// HashToken returns the hex SHA-256 digest stored in place of a refresh token.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

func digestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func subjectID(subject string) uint {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
