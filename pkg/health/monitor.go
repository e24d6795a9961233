package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents health check status
type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the result of a health check
type CheckResult struct {
	Name         string        `json:"name"`
	Required     bool          `json:"required"`
	Status       Status        `json:"status"`
	Message      string        `json:"message,omitempty"`
	Latency      time.Duration `json:"latencyNs"`
	LastCheck    time.Time     `json:"lastCheck"`
	CheckCount   int           `json:"checkCount"`
	FailureCount int           `json:"failureCount"`
}

// Checker probes one dependency. A nil error means healthy.
type Checker func(ctx context.Context) error

type registration struct {
	check    Checker
	required bool
}

// Report is the aggregate view served by the health endpoint.
type Report struct {
	Status Status        `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// Monitor runs registered dependency checks on demand or on an interval.
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]registration
	results  map[string]*CheckResult
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		checkers: make(map[string]registration),
		results:  make(map[string]*CheckResult),
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
	}
}

// Register adds a check. A failing required check makes the whole report
// unhealthy; optional ones only show up in their own entry.
func (m *Monitor) Register(name string, required bool, check Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkers[name] = registration{check: check, required: required}
	m.logger.Info("Registered health checker",
		zap.String("name", name),
		zap.Bool("required", required),
	)
}

// RegisterDisabled records a dependency that is switched off by config.
func (m *Monitor) RegisterDisabled(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[name] = &CheckResult{Name: name, Status: StatusDisabled, Message: name + " is disabled"}
}

// Start runs checks every interval until Stop.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.cancel != nil || m.interval <= 0 {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.run(ctx)
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll runs every registered check now and returns the aggregate report.
func (m *Monitor) CheckAll(ctx context.Context) Report {
	m.mu.RLock()
	checkers := make(map[string]registration, len(m.checkers))
	for name, reg := range m.checkers {
		checkers[name] = reg
	}
	m.mu.RUnlock()

	for name, reg := range checkers {
		m.record(name, reg, m.runOne(ctx, reg.check))
	}
	return m.Report()
}

func (m *Monitor) runOne(ctx context.Context, check Checker) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	result := CheckResult{
		Status:    StatusHealthy,
		Latency:   time.Since(start),
		LastCheck: start,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

func (m *Monitor) record(name string, reg registration, result CheckResult) {
	result.Name = name
	result.Required = reg.required

	m.mu.Lock()
	if existing, ok := m.results[name]; ok {
		result.CheckCount = existing.CheckCount + 1
		result.FailureCount = existing.FailureCount
	} else {
		result.CheckCount = 1
	}
	if result.Status == StatusUnhealthy {
		result.FailureCount++
	}
	m.results[name] = &result
	m.mu.Unlock()

	if result.Status != StatusHealthy {
		m.logger.Warn("Health check failed",
			zap.String("name", name),
			zap.Bool("required", reg.required),
			zap.Duration("latency", result.Latency),
			zap.String("error", result.Message),
		)
	}
}

// Report returns the last recorded results without running checks.
func (m *Monitor) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := Report{Status: StatusHealthy, Checks: make([]CheckResult, 0, len(m.results))}
	for _, result := range m.results {
		report.Checks = append(report.Checks, *result)
		if result.Required && result.Status != StatusHealthy {
			report.Status = StatusUnhealthy
		}
	}
	sort.Slice(report.Checks, func(i, j int) bool { return report.Checks[i].Name < report.Checks[j].Name })
	return report
}

