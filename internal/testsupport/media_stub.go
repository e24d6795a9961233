package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Payphone-Digital/vidtube/pkg/media"
)

// ErrStubUpload is returned for uploads the stub was told to fail.
var ErrStubUpload = fmt.Errorf("%w: stub", media.ErrUploadFailed)

// MediaStub is an in-memory service.MediaGateway. Like the real gateway it
// removes the local file on every Upload call.
type MediaStub struct {
	mu        sync.Mutex
	next      int
	objects   map[string]string
	destroyed []string
	failNames map[string]bool

	// Duration is reported for every video upload.
	Duration float64
	// DestroyErr, when set, fails every Destroy call.
	DestroyErr error
}

func NewMediaStub() *MediaStub {
	return &MediaStub{
		objects:   make(map[string]string),
		failNames: make(map[string]bool),
	}
}

// FailUpload makes uploads of files with this base name fail.
func (m *MediaStub) FailUpload(name string) {
	m.mu.Lock()
	m.failNames[name] = true
	m.mu.Unlock()
}

func (m *MediaStub) Upload(_ context.Context, localPath string, kind media.Kind) (*media.UploadResult, error) {
	if localPath == "" {
		return nil, media.ErrNoFile
	}
	defer os.Remove(localPath)

	m.mu.Lock()
	defer m.mu.Unlock()

	name := filepath.Base(localPath)
	if m.failNames[name] {
		return nil, ErrStubUpload
	}

	m.next++
	key := fmt.Sprintf("%ss/%d%s", kind, m.next, filepath.Ext(localPath))
	url := "https://media.test/" + key
	m.objects[key] = url

	result := &media.UploadResult{
		URL:         url,
		Key:         key,
		Kind:        kind,
		ContentType: media.ContentTypeFor(localPath),
	}
	if kind == media.KindVideo {
		result.Duration = m.Duration
	}
	return result, nil
}

func (m *MediaStub) Destroy(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DestroyErr != nil {
		return errors.Join(media.ErrDeleteFailed, m.DestroyErr)
	}
	delete(m.objects, key)
	m.destroyed = append(m.destroyed, key)
	return nil
}

// Stored reports the keys currently held.
func (m *MediaStub) Stored() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	return keys
}

// Destroyed reports every key removed so far, in order.
func (m *MediaStub) Destroyed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.destroyed...)
}

// StageFile writes a small file under dir and returns its path.
func StageFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("stub media"), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
