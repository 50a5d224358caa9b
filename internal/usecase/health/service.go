package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing; searches still work.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
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

// Component names reported in Report.Checks.
const (
	ComponentEngine = "search_engine"
	ComponentCache  = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine Pinger
	cache  Pinger
}

// New creates a Service. cache can be nil when response caching is disabled.
func New(engine, cache Pinger) *Service {
	return &Service{engine: engine, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	checks[ComponentEngine] = check(ctx, s.engine)
	if checks[ComponentEngine] == CheckError {
		status = Unhealthy
	}

	if s.cache != nil {
		checks[ComponentCache] = check(ctx, s.cache)
		if checks[ComponentCache] == CheckError && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func check(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
