package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Engine request kinds, used as the metrics "kind" label.
const (
	kindPrimary      = "primary"
	kindSupplemental = "supplemental"
	kindAutocomplete = "autocomplete"
)

// execute runs one engine request and records its outcome.
func execute(ctx context.Context, engine Engine, kind string, req request.Request) (response.Response, error) {
	start := time.Now()
	resp, err := engine.Execute(ctx, req)
	metrics.EngineRequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EngineRequestsTotal.WithLabelValues(kind, status).Inc()

	return resp, err //nolint:wrapcheck // callers wrap with operation context
}
