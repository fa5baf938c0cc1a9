package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ats-catalog/core/config"
	"ats-catalog/core/database"
	"ats-catalog/core/fetch"
	"ats-catalog/core/locker"
	"ats-catalog/core/logger"
	"ats-catalog/core/reconcile"
	"ats-catalog/core/storage"
	"ats-catalog/feature/catalog"
	"ats-catalog/feature/crawl"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	db           *gorm.DB
	orchestrator *crawl.Orchestrator
}

// openCatalog loads configuration and connects the migrated catalog database.
func openCatalog() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := catalog.Migrate(db); err != nil {
		return nil, err
	}
	l.Info("Connected to catalog database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("dsn", database.RedactedDSN(cfg.Database)),
	)
	return &app{cfg: cfg, logger: l, db: db}, nil
}

// bootstrap opens the catalog and wires the crawl pipeline.
func bootstrap(ctx context.Context) (*app, error) {
	a, err := openCatalog()
	if err != nil {
		return nil, err
	}
	cfg, l, db := a.cfg, a.logger, a.db

	lk, err := locker.New(ctx, cfg.Locker, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create locker: %w", err)
	}

	engine := reconcile.NewEngine(catalog.NewStore(db), reconcile.WithLogger(l), reconcile.WithLocker(lk))
	registry := crawl.DefaultRegistry(fetch.New(cfg.Fetch, l), l)

	opts := []crawl.Option{crawl.WithLogger(l)}

	sources, err := crawl.LoadSources(cfg.Crawl.SourcesFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.Warn("Sources file not found, only ad-hoc runs are possible", zap.String("path", cfg.Crawl.SourcesFile))
	case err != nil:
		return nil, err
	default:
		l.Info("Loaded sources", zap.String("path", cfg.Crawl.SourcesFile), zap.Int("count", len(sources)))
		opts = append(opts, crawl.WithSources(sources))
	}

	if cfg.Crawl.Snapshots {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		opts = append(opts, crawl.WithArchive(crawl.NewArchive(client, cfg.Storage.Bucket, l)))
	}

	a.orchestrator = crawl.NewOrchestrator(registry, engine, catalog.NewLedger(db), cfg.Crawl, opts...)
	return a, nil
}
