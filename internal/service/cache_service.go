package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	"github.com/Payphone-Digital/vidtube/internal/dto"
	"github.com/Payphone-Digital/vidtube/internal/metrics"
	"github.com/Payphone-Digital/vidtube/pkg/cache"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
)

// JSONCache is implemented by redis.Client.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// RedisVideoCache keeps rendered videos in redis. Redis errors degrade to
// cache misses. Each video also gets an owner marker key so a profile change
// can drop every video that embeds the old owner.
type RedisVideoCache struct {
	client JSONCache
	ttl    time.Duration
}

func NewRedisVideoCache(client JSONCache, ttl time.Duration) *RedisVideoCache {
	return &RedisVideoCache{client: client, ttl: ttl}
}

func (c *RedisVideoCache) Get(ctx context.Context, id uint) (*dto.VideoResponse, bool) {
	var video dto.VideoResponse
	found, err := c.client.GetJSON(ctx, videoCacheKey(id), &video)
	if err != nil || !found {
		metrics.VideoCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.VideoCacheRequests.WithLabelValues("hit").Inc()
	return &video, true
}

func (c *RedisVideoCache) Set(ctx context.Context, video *dto.VideoResponse) {
	if err := c.client.SetJSON(ctx, videoCacheKey(video.ID), video, c.ttl); err != nil {
		logger.WarnWithContext(ctx, "Failed to cache video").Uint("video_id", video.ID).Err(err).Log()
		return
	}
	if video.Owner.ID == 0 {
		return
	}
	if err := c.client.SetJSON(ctx, ownerMarkerKey(video.Owner.ID, video.ID), video.ID, c.ttl); err != nil {
		logger.WarnWithContext(ctx, "Failed to index cached video by owner").
			Uint("video_id", video.ID).
			Uint("owner_id", video.Owner.ID).
			Err(err).
			Log()
	}
}

// InvalidateOwner drops every cached video owned by ownerID.
func (c *RedisVideoCache) InvalidateOwner(ctx context.Context, ownerID uint) {
	markers, err := c.client.ScanKeys(ctx, ownerMarkerPrefix(ownerID)+"*")
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to list cached videos for owner").Uint("owner_id", ownerID).Err(err).Log()
		return
	}
	if len(markers) == 0 {
		return
	}

	keys := make([]string, 0, 2*len(markers))
	for _, marker := range markers {
		keys = append(keys, marker)
		if id, ok := videoIDFromMarker(marker); ok {
			keys = append(keys, videoCacheKey(id))
		}
	}
	if err := c.client.Delete(ctx, keys...); err != nil {
		logger.WarnWithContext(ctx, "Failed to invalidate cached videos for owner").Uint("owner_id", ownerID).Err(err).Log()
	}
}

// Purge drops every cached video and owner marker. It returns the number of
// videos removed.
func (c *RedisVideoCache) Purge(ctx context.Context) (int, error) {
	removed, err := c.client.DeleteByPattern(ctx, constants.CacheKeyVideo+"*")
	if err != nil {
		return removed, err
	}
	if _, err := c.client.DeleteByPattern(ctx, constants.CacheKeyOwner+"*"); err != nil {
		return removed, err
	}
	return removed, nil
}

// Stats reports the redis connection pool when the client exposes it.
func (c *RedisVideoCache) Stats(_ context.Context) map[string]any {
	stats := map[string]any{"backend": "redis", "ttl": c.ttl.String()}
	if pooled, ok := c.client.(interface{ PoolStats() map[string]any }); ok {
		stats["pool"] = pooled.PoolStats()
	}
	return stats
}

func (c *RedisVideoCache) Invalidate(ctx context.Context, id uint) {
	if err := c.client.Delete(ctx, videoCacheKey(id)); err != nil {
		logger.WarnWithContext(ctx, "Failed to invalidate cached video").Uint("video_id", id).Err(err).Log()
	}
}

// MemoryVideoCache is the in-process fallback when redis is disabled.
type MemoryVideoCache struct {
	items *cache.Cache[dto.VideoResponse]
	ttl   time.Duration
}

func NewMemoryVideoCache(ttl time.Duration) *MemoryVideoCache {
	return &MemoryVideoCache{items: cache.NewCache[dto.VideoResponse](time.Minute), ttl: ttl}
}

func (c *MemoryVideoCache) Get(_ context.Context, id uint) (*dto.VideoResponse, bool) {
	video, ok := c.items.Get(videoCacheKey(id))
	if !ok {
		metrics.VideoCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.VideoCacheRequests.WithLabelValues("hit").Inc()
	return &video, true
}

func (c *MemoryVideoCache) Set(_ context.Context, video *dto.VideoResponse) {
	c.items.Set(videoCacheKey(video.ID), *video, c.ttl)
}

func (c *MemoryVideoCache) Invalidate(_ context.Context, id uint) {
	c.items.Delete(videoCacheKey(id))
}

func (c *MemoryVideoCache) InvalidateOwner(_ context.Context, ownerID uint) {
	c.items.DeleteFunc(func(_ string, video dto.VideoResponse) bool {
		return video.Owner.ID == ownerID
	})
}

func (c *MemoryVideoCache) Purge(_ context.Context) (int, error) {
	return c.items.Clear(), nil
}

func (c *MemoryVideoCache) Stats(_ context.Context) map[string]any {
	return map[string]any{"backend": "memory", "ttl": c.ttl.String(), "entries": c.items.Len()}
}

// Close stops the background sweeper.
func (c *MemoryVideoCache) Close() {
	c.items.Close()
}

type noopVideoCache struct{}

func (noopVideoCache) Get(context.Context, uint) (*dto.VideoResponse, bool) { return nil, false }
func (noopVideoCache) Set(context.Context, *dto.VideoResponse)              {}
func (noopVideoCache) Invalidate(context.Context, uint)                     {}

type noopOwnerCache struct{}

func (noopOwnerCache) InvalidateOwner(context.Context, uint) {}

func videoCacheKey(id uint) string {
	return constants.CacheKeyVideo + strconv.FormatUint(uint64(id), 10)
}

func ownerMarkerPrefix(ownerID uint) string {
	return constants.CacheKeyOwner + strconv.FormatUint(uint64(ownerID), 10) + ":video:"
}

func ownerMarkerKey(ownerID, videoID uint) string {
	return ownerMarkerPrefix(ownerID) + strconv.FormatUint(uint64(videoID), 10)
}

func videoIDFromMarker(marker string) (uint, bool) {
	i := strings.LastIndexByte(marker, ':')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(marker[i+1:], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
