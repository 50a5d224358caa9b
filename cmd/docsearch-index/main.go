package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/repository/respcache"
	"github.com/kailas-cloud/docsearch/internal/usecase/indexer"
	"github.com/kailas-cloud/docsearch/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "docsearch-index:", err)
		os.Exit(1)
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:    "docsearch-index",
		Usage:   "Rebuild the documentation search index from JSON files",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Configuration file path (default: config/<ENV>.yaml)",
				Sources: cli.EnvVars("DOCSEARCH_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Documentation directory (overrides indexer.dir)",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Target index (overrides elasticsearch.index)",
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "File name pattern (overrides indexer.pattern)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and reindex when documents change",
			},
			&cli.BoolFlag{
				Name:  "keep-cache",
				Usage: "Do not purge cached search responses after indexing",
			},
			&cli.DurationFlag{
				Name:  "wait-timeout",
				Usage: "How long to wait for the index health status",
				Value: 30 * time.Second,
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, c *cli.Command) error {
	env := config.GetEnv()
	cfg, err := loadConfig(env, c.String("config"))
	if err != nil {
		return err
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Indexer.Dir = dir
	}
	if index := c.String("index"); index != "" {
		cfg.Elasticsearch.Index = index
	}
	if pattern := c.String("pattern"); pattern != "" {
		cfg.Indexer.Pattern = pattern
	}
	if cfg.Indexer.Dir == "" {
		return fmt.Errorf("documentation directory is required (--dir or indexer.dir)")
	}
	sc, err := cfg.Schema()
	if err != nil {
		return fmt.Errorf("build search schema: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	es, err := elastic.NewClient(elastic.Config{
		Addrs:      cfg.Elasticsearch.Addrs,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		Index:      cfg.Elasticsearch.Index,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	svc, err := indexer.New(es, indexer.Options{
		Dir:           cfg.Indexer.Dir,
		Pattern:       cfg.Indexer.Pattern,
		IDField:       cfg.Indexer.IDField,
		Workers:       cfg.Indexer.Workers,
		FlushBytes:    cfg.Indexer.FlushBytes,
		WaitForStatus: cfg.Indexer.WaitForStatus,
		WaitTimeout:   c.Duration("wait-timeout"),
		Mappings:      elastic.Mappings(sc),
	}, logger)
	if err != nil {
		return fmt.Errorf("create indexer: %w", err)
	}

	logger.Info("Indexing documents",
		zap.String("dir", cfg.Indexer.Dir),
		zap.String("index", cfg.Elasticsearch.Index),
		zap.String("pattern", cfg.Indexer.Pattern),
	)

	purge := func(context.Context) {}
	if cfg.Cache.Enabled && !c.Bool("keep-cache") {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("create cache store: %w", err)
		}
		defer store.Close()

		purge = func(ctx context.Context) {
			n, err := respcache.Purge(ctx, store, cfg.Elasticsearch.Index)
			if err != nil {
				// Stale entries still expire after cache.ttl_sec.
				logger.Warn("Failed to purge response cache", zap.Error(err))
				return
			}
			logger.Info("Response cache purged", zap.Int("keys", n))
		}
	}

	report, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("index documents: %w", err)
	}
	printReport(report)
	purge(ctx)

	if !c.Bool("watch") {
		return nil
	}
	if err := svc.Watch(ctx, cfg.Indexer.Debounce(), func(r indexer.Report, err error) {
		if err != nil {
			return
		}
		printReport(r)
		purge(ctx)
	}); err != nil {
		return fmt.Errorf("watch documents: %w", err)
	}
	return nil
}

func loadConfig(env, path string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func printReport(r indexer.Report) {
	fmt.Printf("files: %d  indexed: %d  failed: %d  skipped: %d  (%s)\n",
		r.Files, r.Indexed, r.Failed, r.Skipped, r.Duration.Round(time.Millisecond))
}
