package docsearch

import (
	"context"
	"time"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Healthy reports whether searches can be served.
func (h HealthStatus) Healthy() bool { return h.Status != "error" }

// Health checks the search engine.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	out := HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}

	var err error
	if !out.Healthy() {
		err = ErrIndexUnavailable
	}
	c.obs.observe("health", start, -1, err)
	return out
}
