package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Payphone-Digital/vidtube/config"
	"github.com/Payphone-Digital/vidtube/pkg/circuit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	putErr  error
	rmErr   error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]string)}
}

func (s *fakeStore) Put(_ context.Context, key, localPath, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rmErr != nil {
		return s.rmErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

type fakeProber struct {
	duration float64
	err      error
}

func (p fakeProber) Duration(context.Context, string) (float64, error) {
	return p.duration, p.err
}

func stageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))
	return path
}

func TestGateway_UploadImage(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store, nil, Config{Timeout: time.Second}, nil)
	path := stageFile(t, "avatar.PNG")

	result, err := gw.Upload(context.Background(), path, KindImage)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "images/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "https://cdn.test/"+result.Key, result.URL)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, int64(len("payload")), result.Size)
	assert.Zero(t, result.Duration)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "staged file must be removed")
}

func TestGateway_UploadVideoProbesDuration(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store, fakeProber{duration: 12.5}, Config{}, nil)

	result, err := gw.Upload(context.Background(), stageFile(t, "clip.mp4"), KindVideo)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "videos/"))
	assert.Equal(t, 12.5, result.Duration)
	assert.Equal(t, "video/mp4", store.objects[result.Key])
}

func TestGateway_UploadProbeFailureKeepsUpload(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store, fakeProber{err: errors.New("no ffprobe")}, Config{}, nil)

	result, err := gw.Upload(context.Background(), stageFile(t, "clip.mp4"), KindVideo)
	require.NoError(t, err)

	assert.Equal(t, 1, store.puts)
	assert.Zero(t, result.Duration)
}

func TestGateway_UploadFailureRemovesStagedFile(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("host down")
	gw := NewGateway(store, nil, Config{}, nil)
	path := stageFile(t, "cover.jpg")

	_, err := gw.Upload(context.Background(), path, KindImage)
	require.ErrorIs(t, err, ErrUploadFailed)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGateway_UploadMissingPath(t *testing.T) {
	gw := NewGateway(newFakeStore(), nil, Config{}, nil)

	_, err := gw.Upload(context.Background(), "  ", KindImage)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = gw.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.jpg"), KindImage)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestGateway_BreakerOpensOnRepeatedFailures(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("host down")
	gw := NewGateway(store, nil, Config{BreakerThreshold: 2, BreakerTimeout: time.Hour}, nil)

	for i := 0; i < 2; i++ {
		_, err := gw.Upload(context.Background(), stageFile(t, "a.jpg"), KindImage)
		require.Error(t, err)
	}
	require.Equal(t, 2, store.puts)

	_, err := gw.Upload(context.Background(), stageFile(t, "a.jpg"), KindImage)
	require.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, 2, store.puts, "open breaker must short-circuit")
	assert.Equal(t, circuit.StateOpen.String(), gw.BreakerSnapshot().State)
}

func TestGateway_Destroy(t *testing.T) {
	store := newFakeStore()
	gw := NewGateway(store, nil, Config{}, nil)

	assert.NoError(t, gw.Destroy(context.Background(), ""))

	store.objects["images/x.png"] = "image/png"
	require.NoError(t, gw.Destroy(context.Background(), "images/x.png"))
	assert.NotContains(t, store.objects, "images/x.png")

	store.rmErr = errors.New("denied")
	assert.ErrorIs(t, gw.Destroy(context.Background(), "images/y.png"), ErrDeleteFailed)
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.jpg":  "image/jpeg",
		"a.JPEG": "image/jpeg",
		"a.webp": "image/webp",
		"a.mov":  "video/quicktime",
		"a.webm": "video/webm",
		"a.bin":  "application/octet-stream",
		"noext":  "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentTypeFor(name), name)
	}
}

func TestParseProbeDuration(t *testing.T) {
	duration, err := parseProbeDuration([]byte(`{"format":{"duration":"93.480000"}}`))
	require.NoError(t, err)
	assert.InDelta(t, 93.48, duration, 0.0001)

	_, err = parseProbeDuration([]byte(`{"format":{}}`))
	assert.Error(t, err)

	_, err = parseProbeDuration([]byte(`not json`))
	assert.Error(t, err)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		publicBaseURL(config.MediaConfig{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "http://localhost:9000/vidtube",
		publicBaseURL(config.MediaConfig{Endpoint: "localhost:9000", Bucket: "vidtube"}))
	assert.Equal(t, "https://minio.internal/media",
		publicBaseURL(config.MediaConfig{Endpoint: "https://minio.internal", Bucket: "media", UseSSL: true}))
}

func TestS3BaseURL(t *testing.T) {
	cfg := config.MediaConfig{Bucket: "media", Region: "eu-west-1"}
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", s3BaseURL(cfg, s3Endpoint(cfg)))

	cfg.Endpoint = "localhost:4566"
	assert.Equal(t, "http://localhost:4566/media", s3BaseURL(cfg, s3Endpoint(cfg)))
}
