package middleware

import (
	"context"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	ctxutil "github.com/Payphone-Digital/vidtube/pkg/context"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextMiddleware seeds the request context with request metadata and a
// deadline. Multipart requests get uploadTimeout instead of timeout so a
// media upload is bounded by its own budget.
func ContextMiddleware(module string, timeout, uploadTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithClientIP(c.Request.Context(), c.ClientIP())
		ctx = ctxutil.NewContextWithRequest(ctx, c.Request, module, c.FullPath())

		budget := timeout
		if uploadTimeout > 0 && c.ContentType() == gin.MIMEMultipartPOSTForm {
			budget = uploadTimeout
		}
		if budget > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, budget)
			defer cancel()
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.DebugWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			StatusCode(c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}

// CorrelationMiddleware propagates X-Request-ID and X-Correlation-ID,
// generating a request id when the caller sent none.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		correlationID := c.GetHeader(constants.HeaderXCorrelationID)
		if correlationID == "" {
			correlationID = requestID
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithCorrelationID(ctx, correlationID)

		c.Header(constants.HeaderXRequestID, requestID)
		c.Header(constants.HeaderXCorrelationID, correlationID)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// DefaultContextMiddleware is the request context chain, outermost first.
func DefaultContextMiddleware(module string, timeout, uploadTimeout time.Duration) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		CorrelationMiddleware(),
		ContextMiddleware(module, timeout, uploadTimeout),
	}
}
