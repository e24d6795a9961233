package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/vidtube/internal/constants"
	"github.com/Payphone-Digital/vidtube/pkg/circuit"
	"github.com/Payphone-Digital/vidtube/pkg/health"
	"github.com/Payphone-Digital/vidtube/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BreakerReporter exposes the media circuit breaker state.
type BreakerReporter interface {
	BreakerSnapshot() circuit.Snapshot
}

// PoolReporter exposes the media connection pool.
type PoolReporter interface {
	Stats() map[string]any
}

type HealthHandler struct {
	monitor *health.Monitor
	breaker BreakerReporter
	pool    PoolReporter
}

type HealthCheckResponse struct {
	Status    string               `json:"status"`
	Version   string               `json:"version"`
	Timestamp time.Time            `json:"timestamp"`
	Checks    []health.CheckResult `json:"checks,omitempty"`
	Breaker   *circuit.Snapshot    `json:"mediaBreaker,omitempty"`
	Pool      map[string]any       `json:"mediaPool,omitempty"`
}

// NewHealthHandler builds the handler. breaker and pool may be nil.
func NewHealthHandler(monitor *health.Monitor, breaker BreakerReporter, pool PoolReporter) *HealthHandler {
	return &HealthHandler{monitor: monitor, breaker: breaker, pool: pool}
}

// BasicHealth returns a simple health check (for load balancers)
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthCheckResponse{
		Status:    health.StatusHealthy.String(),
		Version:   constants.AppVersion,
		Timestamp: time.Now().UTC(),
	})
}

// HealthCheck probes every dependency now. Only required dependencies turn
// the response into a 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	report := h.monitor.CheckAll(c.Request.Context())

	response := HealthCheckResponse{
		Status:    report.Status.String(),
		Version:   constants.AppVersion,
		Timestamp: time.Now().UTC(),
		Checks:    report.Checks,
	}
	if h.breaker != nil {
		snapshot := h.breaker.BreakerSnapshot()
		response.Breaker = &snapshot
	}
	if h.pool != nil {
		response.Pool = h.pool.Stats()
	}

	statusCode := http.StatusOK
	if report.Status != health.StatusHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}
