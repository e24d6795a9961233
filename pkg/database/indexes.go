package database

import (
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// secondaryIndexes back the video listing and channel profile queries.
var secondaryIndexes = []string{
	// Listing newest uploads per owner and globally
	"CREATE INDEX IF NOT EXISTS idx_videos_owner_created ON videos(owner_id, created_at DESC);",
	"CREATE INDEX IF NOT EXISTS idx_videos_published_created ON videos(created_at DESC) WHERE is_published = true;",

	// Subscriber counts on channel profiles
	"CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id);",
	"CREATE INDEX IF NOT EXISTS idx_subscriptions_subscriber ON subscriptions(subscriber_id);",
}

// trigramIndexes speed up ILIKE search and need the pg_trgm extension.
var trigramIndexes = []string{
	"CREATE EXTENSION IF NOT EXISTS pg_trgm;",
	"CREATE INDEX IF NOT EXISTS idx_videos_title_trgm ON videos USING GIN (title gin_trgm_ops);",
	"CREATE INDEX IF NOT EXISTS idx_videos_description_trgm ON videos USING GIN (description gin_trgm_ops);",
}

// EnsureIndexes creates secondary indexes. Failures are logged and skipped;
// queries stay correct without them.
func EnsureIndexes(db *gorm.DB) {
	created := 0
	for _, indexSQL := range secondaryIndexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.GetLogger().Warn("Failed to create index", zap.String("sql", indexSQL), zap.Error(err))
			continue
		}
		created++
	}

	for _, indexSQL := range trigramIndexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			logger.GetLogger().Warn("Skipping trigram search indexes", zap.Error(err))
			break
		}
		created++
	}

	logger.GetLogger().Info("Secondary indexes ensured", zap.Int("statements", created))
}
