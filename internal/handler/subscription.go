package handler

import (
	"net/http"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	apperrors "github.com/Payphone-Digital/vidtube/internal/errors"
	"github.com/Payphone-Digital/vidtube/internal/middleware"
	"github.com/Payphone-Digital/vidtube/internal/service"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "SubscriptionToggle")

	channelID, ok := parseID(c, "channelId")
	if !ok {
		respondError(c, apperrors.ErrInvalidChannelID)
		return
	}

	result, err := h.subscriptionService.Toggle(ctx, middleware.CurrentUserID(c), channelID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result, constants.MsgSubscriptionToggle)
}
