package search

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
)

// Engine executes search requests against the search engine.
// Failures are reported as *domain.TransportError.
type Engine interface {
	Execute(ctx context.Context, req request.Request) (response.Response, error)
}
