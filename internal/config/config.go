package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

// Config holds the docsearch configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Cache         CacheConfig         `yaml:"cache"`
	Search        SearchConfig        `yaml:"search"`
	Auth          AuthConfig          `yaml:"auth"`
	Indexer       IndexerConfig       `yaml:"indexer"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ElasticsearchConfig holds search engine connection settings.
type ElasticsearchConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	MaxRetries       int      `yaml:"max_retries"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the optional Redis response cache settings.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// SearchConfig describes what is searched, displayed and faceted.
type SearchConfig struct {
	DefaultPageSize         int           `yaml:"default_page_size"`
	MaxPageSize             int           `yaml:"max_page_size"`
	AutocompleteSize        int           `yaml:"autocomplete_size"`
	AutocompleteMinChars    int           `yaml:"autocomplete_min_chars"`
	MaxParallelSupplemental int           `yaml:"max_parallel_supplemental"`
	SearchFields            []string      `yaml:"search_fields"`
	DisplayFields           []string      `yaml:"display_fields"`
	HighlightFields         []string      `yaml:"highlight_fields"`
	SortOptions             []SortConfig  `yaml:"sort_options"`
	Facets                  []FacetConfig `yaml:"facets"`
}

// SortConfig is one sort choice offered to the UI.
type SortConfig struct {
	Name      string `yaml:"name"`
	Field     string `yaml:"field"`
	Direction string `yaml:"direction"`
}

// FacetConfig configures one faceted field.
type FacetConfig struct {
	Field       string         `yaml:"field"`
	Label       string         `yaml:"label"`
	Kind        string         `yaml:"kind"`  // value (default) | range
	Match       string         `yaml:"match"` // any (default) | all
	Disjunctive bool           `yaml:"disjunctive"`
	Render      *bool          `yaml:"render"` // false: filter-only, never shown as a facet
	EngineField string         `yaml:"engine_field"`
	Size        int            `yaml:"size"`
	Ranges      []facet.Bounds `yaml:"ranges"`
}

// IndexerConfig holds document indexing settings.
type IndexerConfig struct {
	Dir           string `yaml:"dir"`
	Pattern       string `yaml:"pattern"`
	IDField       string `yaml:"id_field"`
	Workers       int    `yaml:"workers"`
	FlushBytes    int    `yaml:"flush_bytes"`
	WaitForStatus string `yaml:"wait_for_status"`
	DebounceMs    int    `yaml:"debounce_ms"`
}

// Debounce returns the watch-mode debounce interval.
func (c IndexerConfig) Debounce() time.Duration { return time.Duration(c.DebounceMs) * time.Millisecond }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 30
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 60
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = schema.DefaultPageSize
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = schema.MaxPageSize
	}
	if c.Search.AutocompleteSize <= 0 {
		c.Search.AutocompleteSize = 5
	}
	if c.Search.AutocompleteMinChars <= 0 {
		c.Search.AutocompleteMinChars = 3
	}
	if c.Search.MaxParallelSupplemental <= 0 {
		c.Search.MaxParallelSupplemental = 4
	}
	if c.Indexer.Pattern == "" {
		c.Indexer.Pattern = `.*json`
	}
	if c.Indexer.IDField == "" {
		c.Indexer.IDField = "id"
	}
	if c.Indexer.Workers <= 0 {
		c.Indexer.Workers = 2
	}
	if c.Indexer.FlushBytes <= 0 {
		c.Indexer.FlushBytes = 5 << 20
	}
	if c.Indexer.WaitForStatus == "" {
		c.Indexer.WaitForStatus = "yellow"
	}
	if c.Indexer.DebounceMs <= 0 {
		c.Indexer.DebounceMs = 500
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Elasticsearch.Addrs) == 0 {
		return fmt.Errorf("elasticsearch.addrs is required")
	}
	if c.Elasticsearch.Index == "" {
		return fmt.Errorf("elasticsearch.index is required")
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if _, err := regexp.Compile(c.Indexer.Pattern); err != nil {
		return fmt.Errorf("indexer.pattern: %w", err)
	}
	switch c.Indexer.WaitForStatus {
	case "green", "yellow", "red":
	default:
		return fmt.Errorf("indexer.wait_for_status must be green, yellow or red, got %q", c.Indexer.WaitForStatus)
	}
	sc, err := c.Schema()
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return validateFacetFields(sc)
}

// validateFacetFields rejects value facets that aggregate a searched field directly.
// Searched fields are analyzed text; the facet has to use the keyword sub-field.
func validateFacetFields(sc schema.Schema) error {
	searched := make(map[string]struct{})
	for _, f := range sc.SearchFields() {
		searched[f] = struct{}{}
	}
	for _, f := range sc.Facets() {
		if f.Kind() != facet.Value {
			continue
		}
		if _, ok := searched[f.EngineField()]; ok {
			return fmt.Errorf("search.facets: %q is a search field, set engine_field: %s.keyword",
				f.Name(), f.EngineField())
		}
	}
	return nil
}

// Schema builds the search schema from the search section.
func (c *Config) Schema() (schema.Schema, error) {
	fields := make([]facet.Field, 0, len(c.Search.Facets))
	for i, fc := range c.Search.Facets {
		f, err := facet.NewField(facet.FieldSpec{
			Name:        fc.Field,
			Label:       fc.Label,
			EngineField: fc.EngineField,
			Kind:        facet.Kind(fc.Kind),
			Match:       facet.Match(fc.Match),
			Disjunctive: fc.Disjunctive,
			Hidden:      fc.Render != nil && !*fc.Render,
			Size:        fc.Size,
			Ranges:      fc.Ranges,
		})
		if err != nil {
			return schema.Schema{}, fmt.Errorf("facets[%d]: %w", i, err)
		}
		fields = append(fields, f)
	}

	sorts := make([]schema.SortOption, 0, len(c.Search.SortOptions))
	for _, so := range c.Search.SortOptions {
		sorts = append(sorts, schema.SortOption{Name: so.Name, Field: so.Field, Direction: so.Direction})
	}

	s, err := schema.New(schema.Params{
		Facets:          fields,
		SearchFields:    c.Search.SearchFields,
		DisplayFields:   c.Search.DisplayFields,
		HighlightFields: c.Search.HighlightFields,
		SortOptions:     sorts,
		DefaultPageSize: c.Search.DefaultPageSize,
		MaxPageSize:     c.Search.MaxPageSize,
	})
	if err != nil {
		return schema.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests and go run from subdirectories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
