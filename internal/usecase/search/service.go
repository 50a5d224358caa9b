package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
)

// Default autocomplete settings.
const (
	DefaultAutocompleteSize     = 5
	DefaultAutocompleteMinChars = 3
)

// Options tunes the search service.
type Options struct {
	MaxParallelSupplemental int
	AutocompleteSize        int
	AutocompleteMinChars    int
}

// Service runs the search pipeline: request building, engine execution,
// disjunctive facet counts and result state assembly.
type Service struct {
	engine      Engine
	schema      schema.Schema
	requests    *request.Builder
	results     *result.Builder
	coordinator *Coordinator
	acSize      int
	acMinChars  int
	logger      *zap.Logger
}

// New creates a search service.
func New(engine Engine, s schema.Schema, opts Options, logger *zap.Logger) *Service {
	if opts.AutocompleteSize <= 0 {
		opts.AutocompleteSize = DefaultAutocompleteSize
	}
	if opts.AutocompleteMinChars <= 0 {
		opts.AutocompleteMinChars = DefaultAutocompleteMinChars
	}
	requests := request.NewBuilder(s)
	return &Service{
		engine:      engine,
		schema:      s,
		requests:    requests,
		results:     result.NewBuilder(s),
		coordinator: NewCoordinator(engine, requests, s.DisjunctiveFields(), opts.MaxParallelSupplemental, logger),
		acSize:      opts.AutocompleteSize,
		acMinChars:  opts.AutocompleteMinChars,
		logger:      logger,
	}
}

// Schema returns the search schema the service was built with.
func (s *Service) Schema() schema.Schema { return s.schema }

// Search executes a user-triggered search. A failed primary query aborts with the
// transport error; failed disjunctive queries only degrade that field's counts.
func (s *Service) Search(ctx context.Context, st request.State) (result.State, error) {
	if err := st.Validate(); err != nil {
		return result.State{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.requests.Validate(st); err != nil {
		return result.State{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	req := s.requests.Build(st)
	resp, err := execute(ctx, s.engine, kindPrimary, req)
	if err != nil {
		return result.State{}, fmt.Errorf("execute search: %w", err)
	}

	resp = s.coordinator.Apply(ctx, resp, st)

	perPage := 0
	if st.ResultsPerPage > 0 {
		perPage = req.PageSize()
	}
	out := s.results.Build(resp, perPage)
	out.WasSearched = true

	logpkg.FromContextOr(ctx, s.logger).Debug("Search completed",
		zap.String("query", req.Query()),
		zap.Int("filters", len(req.Filters())),
		zap.Int("total", out.TotalResults),
		zap.Int("facets", len(out.Facets)),
	)

	return out, nil
}

// Autocomplete returns the first size matches for a partially typed term (size <= 0 uses
// the configured default). Terms shorter than the configured minimum yield no results without querying.
func (s *Service) Autocomplete(ctx context.Context, term string, size int) ([]result.Result, error) {
	term = strings.TrimSpace(term)
	if len(term) > request.MaxQueryLength {
		return nil, fmt.Errorf("%w: search term too long (max %d chars)", domain.ErrInvalidRequest, request.MaxQueryLength)
	}
	if utf8.RuneCountInString(term) < s.acMinChars {
		return []result.Result{}, nil
	}

	if size <= 0 {
		size = s.acSize
	}
	req := s.requests.BuildAutocomplete(term, size)
	resp, err := execute(ctx, s.engine, kindAutocomplete, req)
	if err != nil {
		return nil, fmt.Errorf("execute autocomplete: %w", err)
	}

	return s.results.Results(resp.Hits), nil
}
