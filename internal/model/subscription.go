package model

import "time"

// Subscription is a directed edge: Subscriber follows Channel.
type Subscription struct {
	ID           uint      `gorm:"primaryKey"`
	SubscriberID uint      `gorm:"column:subscriber_id;not null;uniqueIndex:idx_subscriptions_pair"`
	ChannelID    uint      `gorm:"column:channel_id;not null;uniqueIndex:idx_subscriptions_pair;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}
