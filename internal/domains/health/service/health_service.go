package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bookshelf-backend/internal/domains/health"
)

const DefaultCheckTimeout = 2 * time.Second

type healthService struct {
	deps    []health.Dependency
	timeout time.Duration
	now     func() time.Time
}

func NewHealthService(timeout time.Duration, deps ...health.Dependency) health.Service {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &healthService{deps: deps, timeout: timeout, now: time.Now}
}

func (s *healthService) Status(ctx context.Context) health.SystemStatus {
	services := s.Services(ctx)

	status := health.SystemStatus{
		Timestamp: s.now().UTC(),
		Services:  services,
	}
	for _, dep := range services {
		if dep.Status == health.StatusDisabled {
			continue
		}
		status.TotalServices++
		if dep.Status == health.StatusReachable {
			status.HealthyServices++
		}
	}

	switch {
	case status.HealthyServices == status.TotalServices:
		status.Status = health.OverallHealthy
	case status.HealthyServices > 0:
		status.Status = health.OverallDegraded
	default:
		status.Status = health.OverallUnhealthy
	}
	return status
}

func (s *healthService) Services(ctx context.Context) map[string]health.DependencyStatus {
	results := s.checkAll(ctx, s.deps)

	out := make(map[string]health.DependencyStatus, len(results))
	for _, r := range results {
		out[r.Name] = r
	}
	return out
}

func (s *healthService) Service(ctx context.Context, name string) (health.DependencyStatus, error) {
	for _, dep := range s.deps {
		if dep.Name == name {
			return s.check(ctx, dep), nil
		}
	}
	return health.DependencyStatus{}, health.ErrUnknownService
}

func (s *healthService) Ready(ctx context.Context) ([]health.DependencyStatus, bool) {
	var critical []health.Dependency
	for _, dep := range s.deps {
		if dep.Critical {
			critical = append(critical, dep)
		}
	}

	results := s.checkAll(ctx, critical)
	ready := true
	for _, r := range results {
		if !r.Healthy() {
			ready = false
		}
	}
	return results, ready
}

// checkAll chạy song song, giữ thứ tự của deps
func (s *healthService) checkAll(ctx context.Context, deps []health.Dependency) []health.DependencyStatus {
	results := make([]health.DependencyStatus, len(deps))

	var g errgroup.Group
	for i, dep := range deps {
		g.Go(func() error {
			results[i] = s.check(ctx, dep)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *healthService) check(ctx context.Context, dep health.Dependency) health.DependencyStatus {
	status := health.DependencyStatus{Name: dep.Name, Critical: dep.Critical}
	if dep.Check == nil {
		status.Status = health.StatusDisabled
		return status
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	err := dep.Check(checkCtx)
	status.LatencyMS = float64(s.now().Sub(start).Microseconds()) / 1000

	switch {
	case err == nil:
		status.Status = health.StatusReachable
		if dep.Details != nil {
			status.Details = dep.Details()
		}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(checkCtx.Err(), context.DeadlineExceeded):
		status.Status = health.StatusTimeout
		status.Error = err.Error()
	default:
		status.Status = health.StatusUnreachable
		status.Error = err.Error()
	}

	if err != nil {
		log.Warn().Err(err).Str("dependency", dep.Name).Str("status", status.Status).Msg("Health check failed")
	}
	return status
}
