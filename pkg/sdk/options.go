package docsearch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs      []string
	username   string
	password   string
	index      string
	maxRetries int
	transport  http.RoundTripper

	schema           *Schema
	maxParallel      int
	autocompleteSize int
	autocompleteMin  int
	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch sets the Elasticsearch node URLs.
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
	})
}

// WithBasicAuth sets Elasticsearch credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithIndex sets the index to search.
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithSchema sets the fields that are searched, displayed and faceted. Required.
func WithSchema(s Schema) Option {
	return optionFunc(func(c *clientConfig) {
		c.schema = &s
	})
}

// WithMaxParallel bounds the concurrent disjunctive facet queries per search.
// Default: no bound.
func WithMaxParallel(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxParallel = n
	})
}

// WithAutocomplete sets the default number of suggestions and the minimum term length.
// Defaults: 5 suggestions, 3 characters.
func WithAutocomplete(size, minChars int) Option {
	return optionFunc(func(c *clientConfig) {
		c.autocompleteSize = size
		c.autocompleteMin = minChars
	})
}

// WithReadinessTimeout bounds the initial wait for the cluster. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithTransport overrides the HTTP transport used to reach Elasticsearch.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
