package service

import (
	"context"
	"errors"

	"github.com/Payphone-Digital/vidtube/internal/dto"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	subscriptions SubscriptionStore
	users         UserStore
}

func NewSubscriptionService(subscriptions SubscriptionStore, users UserStore) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users}
}

func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID uint) (*dto.SubscriptionToggleResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "SubscriptionToggle")

	if subscriberID == channelID {
		return nil, apperrors.ErrSelfSubscription
	}

	if _, err := s.users.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChannelNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	subscribed, err := s.subscriptions.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Subscription toggled").
		Uint("channel_id", channelID).
		Bool("subscribed", subscribed).
		Log()

	return &dto.SubscriptionToggleResponse{ChannelID: channelID, Subscribed: subscribed}, nil
}
