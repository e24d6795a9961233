package database

import (
	"time"

	"github.com/Payphone-Digital/vidtube/internal/model"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models, then adds the
// secondary indexes gorm tags cannot express.
func AutoMigrate(db *gorm.DB) error {
	start := time.Now()

	if err := db.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Subscription{},
	); err != nil {
		return err
	}

	EnsureIndexes(db)

	logger.GetLogger().Info("Database migrated",
		zap.Duration("migration_time", time.Since(start)),
	)
	return nil
}
