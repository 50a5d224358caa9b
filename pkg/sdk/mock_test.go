package docsearch

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn       func(ctx context.Context, st request.State) (result.State, error)
	autocompleteFn func(ctx context.Context, term string, size int) ([]result.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, st request.State) (result.State, error) {
	return m.searchFn(ctx, st)
}

func (m *mockSearchUC) Autocomplete(ctx context.Context, term string, size int) ([]result.Result, error) {
	return m.autocompleteFn(ctx, term, size)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
