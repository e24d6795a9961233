package repository

import (
	"context"

	"github.com/Payphone-Digital/vidtube/internal/model"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Toggle flips the subscriber->channel edge and reports the new state.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "SubscriptionToggle")

	subscribed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
			Delete(&model.Subscription{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		// a concurrent toggle may have inserted the same edge already
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Subscription{SubscriberID: subscriberID, ChannelID: channelID}).Error
		subscribed = err == nil
		return err
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to toggle subscription").
			Uint("channel_id", channelID).
			Err(err).
			Log()
		return false, err
	}

	return subscribed, nil
}
