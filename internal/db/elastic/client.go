package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
)

// Engine operation names used in transport errors.
const (
	OpPing        = "ping"
	OpSearch      = "search"
	OpExists      = "indices.exists"
	OpCreateIndex = "indices.create"
	OpDeleteIndex = "indices.delete"
	OpBulk        = "bulk"
	OpHealth      = "cluster.health"
)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	Index      string
	// MaxRetries enables transport retries on 502/503/504. Zero disables them.
	MaxRetries int
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client executes search requests against one Elasticsearch index.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// NewClient creates an Elasticsearch client bound to cfg.Index.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries <= 0,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Client{es: es, index: cfg.Index}, nil
}

// Index returns the index name the client is bound to.
func (c *Client) Index() string { return c.index }

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return domain.NewTransportError(OpPing, 0, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(OpPing, res)
	}
	return nil
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Execute runs one search request. Network failures, error statuses and
// undecodable bodies are all reported as *domain.TransportError.
func (c *Client) Execute(ctx context.Context, req request.Request) (response.Response, error) {
	body, err := json.Marshal(encodeQuery(req))
	if err != nil {
		return response.Response{}, fmt.Errorf("encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return response.Response{}, domain.NewTransportError(OpSearch, 0, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return response.Response{}, responseError(OpSearch, res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return response.Response{}, domain.NewTransportError(OpSearch, res.StatusCode, err)
	}

	resp, err := response.Decode(data, req.PageSize())
	if err != nil {
		return response.Response{}, domain.NewTransportError(OpSearch, res.StatusCode, err)
	}
	return resp, nil
}

// errorBody is the Elasticsearch error envelope.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// responseError builds a transport error from a non-2xx response, using the
// engine's error reason when the body carries one.
func responseError(op string, res *esapi.Response) error {
	var eb errorBody
	if res.Body != nil {
		if err := json.NewDecoder(res.Body).Decode(&eb); err == nil && eb.Error.Reason != "" {
			return domain.NewTransportError(op, res.StatusCode,
				fmt.Errorf("%s: %s", eb.Error.Type, eb.Error.Reason))
		}
	}
	return domain.NewTransportError(op, res.StatusCode, errors.New(res.Status()))
}
