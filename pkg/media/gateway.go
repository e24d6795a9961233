package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/metrics"
	"github.com/Payphone-Digital/vidtube/pkg/circuit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind decides the object prefix and whether the file gets probed.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var (
	ErrNoFile       = errors.New("media: no local file given")
	ErrUploadFailed = errors.New("media: upload failed")
	ErrDeleteFailed = errors.New("media: delete failed")
)

// ObjectStore is the remote side of the gateway.
type ObjectStore interface {
	Put(ctx context.Context, key, localPath, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Prober reads the playback length of a local video file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type Config struct {
	Timeout          time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

// UploadResult describes a stored object.
type UploadResult struct {
	URL         string
	Key         string
	Kind        Kind
	ContentType string
	Size        int64
	Duration    float64
}

// Gateway pushes locally staged files to the media host. The staged file is
// removed once Upload returns, whatever the outcome.
type Gateway struct {
	store   ObjectStore
	prober  Prober
	breaker *circuit.Breaker
	timeout time.Duration
	logger  *zap.Logger
}

func NewGateway(store ObjectStore, prober Prober, cfg Config, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	breakerCfg := circuit.DefaultConfig()
	if cfg.BreakerThreshold > 0 {
		breakerCfg.Threshold = cfg.BreakerThreshold
	}
	if cfg.BreakerTimeout > 0 {
		breakerCfg.Timeout = cfg.BreakerTimeout
	}
	breakerCfg.OnStateChange = func(name string, _, to circuit.State) {
		metrics.MediaBreakerState.WithLabelValues(name).Set(float64(to))
	}

	return &Gateway{
		store:   store,
		prober:  prober,
		breaker: circuit.NewBreaker("media", breakerCfg, logger),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

func (g *Gateway) Upload(ctx context.Context, localPath string, kind Kind) (*UploadResult, error) {
	if strings.TrimSpace(localPath) == "" {
		return nil, ErrNoFile
	}
	defer g.discard(localPath)

	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUploadFailed, filepath.Base(localPath), err)
	}

	result := &UploadResult{
		Key:         objectKey(kind, localPath),
		Kind:        kind,
		ContentType: ContentTypeFor(localPath),
		Size:        info.Size(),
	}

	if kind == KindVideo && g.prober != nil {
		duration, err := g.prober.Duration(ctx, localPath)
		if err != nil {
			g.logger.Warn("Video probe failed, storing without duration",
				zap.String("key", result.Key),
				zap.Error(err),
			)
		}
		result.Duration = duration
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err = g.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		url, err := g.store.Put(ctx, result.Key, localPath, result.ContentType)
		if err != nil {
			return err
		}
		result.URL = url
		return nil
	})
	metrics.MediaUploadDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	metrics.MediaUploadsTotal.WithLabelValues(string(kind), metrics.Outcome(err)).Inc()
	if err != nil {
		g.logger.Warn("Media upload failed",
			zap.String("key", result.Key),
			zap.String("kind", string(kind)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	metrics.MediaUploadSizeBytes.WithLabelValues(string(kind)).Observe(float64(result.Size))
	g.logger.Debug("Media uploaded",
		zap.String("key", result.Key),
		zap.Int64("size", result.Size),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// Destroy removes a stored object. An empty key is a no-op.
func (g *Gateway) Destroy(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	err := g.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return g.store.Remove(ctx, key)
	})
	metrics.MediaDeletesTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		g.logger.Warn("Media delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return g.store.Ping(ctx)
}

func (g *Gateway) BreakerSnapshot() circuit.Snapshot {
	return g.breaker.Snapshot()
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		g.logger.Warn("Failed to remove staged file", zap.String("path", path), zap.Error(err))
	}
}

func objectKey(kind Kind, localPath string) string {
	return fmt.Sprintf("%ss/%s%s", kind, uuid.NewString(), strings.ToLower(filepath.Ext(localPath)))
}
