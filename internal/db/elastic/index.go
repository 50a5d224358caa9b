package elastic

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v9/esutil"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/document"
)

// IndexExists reports whether the bound index exists.
func (c *Client) IndexExists(ctx context.Context) (bool, error) {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, domain.NewTransportError(OpExists, 0, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, responseError(OpExists, res)
	}
}

// DeleteIndex removes the bound index. A missing index is not an error.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return domain.NewTransportError(OpDeleteIndex, 0, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError(OpDeleteIndex, res)
	}
	return nil
}

// BulkIndex indexes docs into the bound index. Per-document failures are counted
// and reported through onFailure; only a failure of the indexer itself is an error.
func (c *Client) BulkIndex(
	ctx context.Context, docs []document.Document, opts document.IndexOptions,
	onFailure func(doc document.Document, reason string),
) (document.IndexStats, error) {
	cfg := esutil.BulkIndexerConfig{
		Client:     c.es,
		Index:      c.index,
		NumWorkers: opts.Workers,
		FlushBytes: opts.FlushBytes,
	}
	bi, err := esutil.NewBulkIndexer(cfg)
	if err != nil {
		return document.IndexStats{}, fmt.Errorf("create bulk indexer: %w", err)
	}

	var failed atomic.Int64
	for _, d := range docs {
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: d.ID(),
			Body:       bytes.NewReader(d.Source()),
			OnFailure: func(_ context.Context, _ esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if onFailure == nil {
					return
				}
				if err != nil {
					onFailure(d, err.Error())
					return
				}
				onFailure(d, res.Error.Type+": "+res.Error.Reason)
			},
		})
		if err != nil {
			_ = bi.Close(ctx)
			return document.IndexStats{}, domain.NewTransportError(OpBulk, 0, err)
		}
	}

	if err = bi.Close(ctx); err != nil {
		return document.IndexStats{}, domain.NewTransportError(OpBulk, 0, err)
	}

	st := bi.Stats()
	return document.IndexStats{
		Indexed: int(st.NumIndexed + st.NumCreated),
		Failed:  max(int(st.NumFailed), int(failed.Load())),
	}, nil
}

// WaitForStatus blocks until the bound index reaches status (green, yellow) or timeout expires.
func (c *Client) WaitForStatus(ctx context.Context, status string, timeout time.Duration) error {
	res, err := c.es.Cluster.Health(
		c.es.Cluster.Health.WithContext(ctx),
		c.es.Cluster.Health.WithIndex(c.index),
		c.es.Cluster.Health.WithWaitForStatus(status),
		c.es.Cluster.Health.WithTimeout(timeout),
	)
	if err != nil {
		return domain.NewTransportError(OpHealth, 0, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(OpHealth, res)
	}
	return nil
}
