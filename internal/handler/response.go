package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Payphone-Digital/vidtube/config"
	"github.com/Payphone-Digital/vidtube/internal/constants"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/service"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/Payphone-Digital/vidtube/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func respondSuccess(c *gin.Context, status int, data any, message string) {
	c.JSON(status, constants.BuildSuccessResponse(status, data, message))
}

// respondError renders err as the error envelope with the status its domain
// code maps to. Non-domain errors become a bare 500.
func respondError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	message := apperrors.GetErrorMessage(err)
	if !apperrors.IsDomainError(err) {
		message = constants.MsgInternalError
	}
	c.JSON(status, constants.BuildErrorResponse(status, message))
}

func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, apperrors.ErrUploadTooLarge)
		return
	}
	c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgValidationFailed, validation.Messages(err)...))
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Cookies writes and clears the session cookies.
type Cookies struct {
	cfg        config.CookieConfig
	accessTTL  int
	refreshTTL int
}

func NewCookies(cfg config.CookieConfig, jwt config.JWTConfig) *Cookies {
	return &Cookies{
		cfg:        cfg,
		accessTTL:  int(jwt.AccessExpiry.Seconds()),
		refreshTTL: int(jwt.RefreshExpiry.Seconds()),
	}
}

func (ck *Cookies) Set(c *gin.Context, pair *service.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.CookieAccessToken, pair.AccessToken, ck.accessTTL, "/", ck.cfg.Domain, ck.cfg.Secure, true)
	c.SetCookie(constants.CookieRefreshToken, pair.RefreshToken, ck.refreshTTL, "/", ck.cfg.Domain, ck.cfg.Secure, true)
}

func (ck *Cookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.CookieAccessToken, "", -1, "/", ck.cfg.Domain, ck.cfg.Secure, true)
	c.SetCookie(constants.CookieRefreshToken, "", -1, "/", ck.cfg.Domain, ck.cfg.Secure, true)
}

// Uploads stages multipart files in a temp directory for the media gateway.
type Uploads struct {
	dir      string
	maxBytes int64
}

func NewUploads(cfg config.UploadConfig) *Uploads {
	return &Uploads{dir: cfg.TempDir, maxBytes: cfg.MaxBytes}
}

// Limit caps the request body. Call before binding.
func (u *Uploads) Limit(c *gin.Context) {
	if u.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxBytes)
	}
}

// Save writes the form file to a uniquely named temp path. A missing file
// yields "" and no error.
func (u *Uploads) Save(c *gin.Context, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(u.dir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	if err := c.SaveUploadedFile(header, path); err != nil {
		return "", err
	}
	return path, nil
}

// SaveAll stages several fields. On error the files already staged are
// removed.
func (u *Uploads) SaveAll(c *gin.Context, fields ...string) ([]string, error) {
	paths := make([]string, 0, len(fields))
	for _, field := range fields {
		path, err := u.Save(c, field)
		if err != nil {
			u.Cleanup(c.Request.Context(), paths...)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Cleanup removes staged files. The gateway usually got there first.
func (u *Uploads) Cleanup(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnWithContext(ctx, "Failed to remove temp upload").String("path", path).Err(err).Log()
		}
	}
}
