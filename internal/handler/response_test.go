package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Payphone-Digital/vidtube/config"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartContext(t *testing.T, field, filename string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/upload", &buf)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c, w
}

func TestUploads_Save(t *testing.T) {
	dir := t.TempDir()
	uploads := NewUploads(config.UploadConfig{TempDir: dir})

	c, _ := multipartContext(t, "avatar", "Face.PNG", []byte("png"))
	path, err := uploads.Save(c, "avatar")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, ".png", filepath.Ext(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(content))

	missing, err := uploads.Save(c, "coverImage")
	require.NoError(t, err)
	assert.Empty(t, missing)

	uploads.Cleanup(context.Background(), path, "", filepath.Join(dir, "gone.png"))
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUploads_SaveNotMultipart(t *testing.T) {
	uploads := NewUploads(config.UploadConfig{TempDir: t.TempDir()})

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPatch, "/x", strings.NewReader(`{"title":"t"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	path, err := uploads.Save(c, "thumbnail")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestUploads_LimitRejectsLargeBodies(t *testing.T) {
	uploads := NewUploads(config.UploadConfig{TempDir: t.TempDir(), MaxBytes: 512})

	c, w := multipartContext(t, "avatar", "big.png", bytes.Repeat([]byte("x"), 4096))
	uploads.Limit(c)

	_, err := uploads.Save(c, "avatar")
	require.Error(t, err)

	respondBindError(c, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Uploaded file is too large", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw  string
		want uint
		ok   bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "videoId", Value: tt.raw}}

			id, ok := parseID(c, "videoId")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"domain", apperrors.ErrVideoNotFound, http.StatusNotFound, "Video not found"},
		{"wrapped", apperrors.WrapError(apperrors.ErrNotVideoOwner, errors.New("owner mismatch")), http.StatusForbidden, "You are not allowed to modify this video"},
		{"plain", errors.New("driver exploded"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["message"])
			assert.EqualValues(t, tt.status, body["statusCode"])
			assert.Equal(t, []any{}, body["errors"])
		})
	}
}
