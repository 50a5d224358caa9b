package indexer

import (
	"context"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Engine is the index lifecycle the indexer drives.
type Engine interface {
	Ping(ctx context.Context) error
	IndexExists(ctx context.Context) (bool, error)
	DeleteIndex(ctx context.Context) error
	CreateIndex(ctx context.Context, mappings map[string]any) error
	BulkIndex(
		ctx context.Context, docs []document.Document, opts document.IndexOptions,
		onFailure func(doc document.Document, reason string),
	) (document.IndexStats, error)
	WaitForStatus(ctx context.Context, status string, timeout time.Duration) error
}
