package health

import (
	"context"
	"errors"
	"time"
)

// Trạng thái từng dependency
const (
	StatusReachable   = "reachable"
	StatusUnreachable = "unreachable"
	StatusTimeout     = "timeout"
	StatusDisabled    = "disabled"
)

// Trạng thái tổng
const (
	OverallHealthy   = "healthy"
	OverallDegraded  = "degraded"
	OverallUnhealthy = "unhealthy"
)

var ErrUnknownService = errors.New("unknown service")

type CheckFunc func(ctx context.Context) error

// Dependency là một thành phần được kiểm tra. Check nil nghĩa là đã tắt qua config.
// Critical dependency quyết định /ready.
type Dependency struct {
	Name     string
	Critical bool
	Check    CheckFunc
	// Details, nếu có, được đính kèm vào kết quả khi check thành công (vd. pool stats)
	Details func() any
}

type DependencyStatus struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Critical  bool    `json:"critical"`
	LatencyMS float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
	Details   any     `json:"details,omitempty"`
}

func (s DependencyStatus) Healthy() bool {
	return s.Status == StatusReachable || s.Status == StatusDisabled
}

type SystemStatus struct {
	Status          string                      `json:"status"`
	Timestamp       time.Time                   `json:"timestamp"`
	TotalServices   int                         `json:"total_services"`
	HealthyServices int                         `json:"healthy_services"`
	Services        map[string]DependencyStatus `json:"services"`
}

type Service interface {
	Status(ctx context.Context) SystemStatus
	Services(ctx context.Context) map[string]DependencyStatus
	Service(ctx context.Context, name string) (DependencyStatus, error)
	// Ready chỉ kiểm tra critical dependency
	Ready(ctx context.Context) ([]DependencyStatus, bool)
}
