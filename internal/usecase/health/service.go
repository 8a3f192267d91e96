package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each individual check.
const DefaultTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	RunID  string                 `json:"run_id,omitempty"`
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
	Errors map[string]string      `json:"errors,omitempty"`
}

type namedCheck struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	runID   string
	timeout time.Duration
	checks  []namedCheck
}

// New creates a Service stamped with the run id.
func New(runID string) *Service {
	return &Service{runID: runID, timeout: DefaultTimeout}
}

// With registers a component check. A nil checker is skipped.
func (s *Service) With(name string, c Checker) *Service {
	if c != nil {
		s.checks = append(s.checks, namedCheck{name: name, checker: c})
	}
	return s
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs every registered check in registration order.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{RunID: s.runID, Status: Healthy, Checks: make(map[string]CheckResult, len(s.checks))}

	failed := 0
	for _, c := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.checker.HealthCheck(cctx)
		cancel()

		if err != nil {
			failed++
			r.Checks[c.name] = CheckError
			if r.Errors == nil {
				r.Errors = make(map[string]string)
			}
			r.Errors[c.name] = err.Error()
			continue
		}
		r.Checks[c.name] = CheckOK
	}

	switch {
	case failed == 0:
		r.Status = Healthy
	case failed == len(s.checks):
		r.Status = Unhealthy
	default:
		r.Status = Degraded
	}
	return r
}
