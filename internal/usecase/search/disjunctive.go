package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Coordinator replaces the counts of filtered disjunctive fields with counts computed
// without that field's own filter, so other values of a multi-select facet stay visible.
type Coordinator struct {
	engine      Engine
	builder     *request.Builder
	fields      []string
	maxParallel int
	logger      *zap.Logger
}

// NewCoordinator creates a coordinator for the given disjunctive fields.
// maxParallel <= 0 issues all supplemental queries at once.
func NewCoordinator(
	engine Engine, builder *request.Builder, fields []string,
	maxParallel int, logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		engine:      engine,
		builder:     builder,
		fields:      append([]string(nil), fields...),
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// supplemental is the outcome of one per-field query. Each goroutine owns one slot.
type supplemental struct {
	field   string
	ok      bool
	present bool
	agg     response.Aggregation
}

// Apply issues one supplemental query per disjunctive field with an active filter and
// merges the returned aggregations into a copy of primary. A failed query leaves that
// field's primary aggregation in place. Hits and all other aggregations are untouched.
func (c *Coordinator) Apply(ctx context.Context, primary response.Response, st request.State) response.Response {
	active := c.activeFields(st)
	if len(active) == 0 {
		return primary
	}

	slots := make([]supplemental, len(active))

	var g errgroup.Group
	if c.maxParallel > 0 {
		g.SetLimit(c.maxParallel)
	}
	for i, field := range active {
		g.Go(func() error {
			slots[i] = c.fetch(ctx, st, field)
			return nil
		})
	}
	_ = g.Wait()

	aggs := primary.Aggregations.Clone()
	if aggs == nil {
		aggs = make(response.Aggregations, len(slots))
	}
	for _, s := range slots {
		if !s.ok {
			continue
		}
		if s.present {
			aggs[s.field] = s.agg
		} else {
			delete(aggs, s.field)
		}
	}

	return primary.WithAggregations(aggs)
}

func (c *Coordinator) activeFields(st request.State) []string {
	var out []string
	for _, f := range c.fields {
		if st.HasActiveFilter(f) {
			out = append(out, f)
		}
	}
	return out
}

func (c *Coordinator) fetch(ctx context.Context, st request.State, field string) supplemental {
	req := c.builder.Build(st.WithoutFilter(field)).ForFacet(field)

	resp, err := execute(ctx, c.engine, kindSupplemental, req)
	if err != nil {
		metrics.DisjunctiveFallbacksTotal.WithLabelValues(field).Inc()
		logpkg.FromContextOr(ctx, c.logger).Warn("Disjunctive facet query failed, keeping filtered counts",
			zap.String("field", field),
			zap.Error(err),
		)
		return supplemental{field: field}
	}

	agg, present := resp.Aggregations[field]
	return supplemental{field: field, ok: true, present: present, agg: agg}
}
