package docsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db/elastic"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	Search(ctx context.Context, st request.State) (result.State, error)
	Autocomplete(ctx context.Context, term string, size int) ([]result.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the docsearch SDK entry point.
type Client struct {
	schema    Schema
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and waits until the cluster answers.
// The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("docsearch: elasticsearch address required (use WithElasticsearch)")
	}
	if cfg.index == "" {
		return nil, errors.New("docsearch: index required (use WithIndex)")
	}
	if cfg.schema == nil {
		return nil, errors.New("docsearch: schema required (use WithSchema)")
	}
	sc, err := cfg.schema.toDomain()
	if err != nil {
		return nil, err
	}

	es, err := elastic.NewClient(elastic.Config{
		Addrs:      cfg.addrs,
		Username:   cfg.username,
		Password:   cfg.password,
		Index:      cfg.index,
		MaxRetries: cfg.maxRetries,
		Transport:  cfg.transport,
	})
	if err != nil {
		return nil, fmt.Errorf("docsearch: create elasticsearch client: %w", err)
	}
	if err := es.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		return nil, fmt.Errorf("docsearch: elasticsearch not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	// The SDK reports through slog; internal zap logging stays off.
	searchSvc := searchuc.New(es, sc, searchuc.Options{
		MaxParallelSupplemental: cfg.maxParallel,
		AutocompleteSize:        cfg.autocompleteSize,
		AutocompleteMinChars:    cfg.autocompleteMin,
	}, zap.NewNop())

	return &Client{
		schema:    *cfg.schema,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(es, nil),
		obs:       obs,
	}, nil
}

// Schema returns the schema the client was created with.
func (c *Client) Schema() Schema { return c.schema }

// Search runs a faceted search. Counts of disjunctive facets with an active
// filter ignore that field's own filter.
func (c *Client) Search(ctx context.Context, st State) (out ResultState, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, hitsOf(out, err), err) }()

	res, err := c.searchSvc.Search(ctx, st)
	if err != nil {
		return ResultState{}, fmt.Errorf("search: %w", err)
	}
	return stateFromDomain(res), nil
}

// Autocomplete returns up to size suggestions for a partially typed term
// (size <= 0 uses the configured default).
func (c *Client) Autocomplete(ctx context.Context, term string, size int) (out []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("autocomplete", start, len(out), err) }()

	res, err := c.searchSvc.Autocomplete(ctx, term, size)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	return resultsFromDomain(res), nil
}

func hitsOf(st ResultState, err error) int {
	if err != nil {
		return -1
	}
	return st.TotalResults
}
