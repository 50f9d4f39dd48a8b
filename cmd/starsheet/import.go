package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/starsheet/internal/config"
	"github.com/cory-johannsen/starsheet/internal/importer"
	"github.com/cory-johannsen/starsheet/internal/importer/hephaistos"
	"github.com/cory-johannsen/starsheet/internal/notes"
	"github.com/cory-johannsen/starsheet/internal/observability"
	"github.com/cory-johannsen/starsheet/internal/server"
	"github.com/cory-johannsen/starsheet/internal/storage/postgres"
	"github.com/cory-johannsen/starsheet/internal/storage/redis"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [character-id...]",
		Short: "Import characters and publish their statistics",
		Long: `Fetch each character from Hephaistos, compute its statistics and write them to
every enabled sink. With no ids, hephaistos.character_ids from the configuration is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer func() { _ = observability.Sync(logger) }()

			return runImport(cmd.Context(), cfg, args, logger)
		},
	}
}

// runImport wires the configured source and sinks and imports ids, falling back to
// the configured ids when none are given.
func runImport(ctx context.Context, cfg config.Config, ids []string, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(ids) == 0 {
		ids = cfg.Hephaistos.CharacterIDs
	}
	if len(ids) == 0 {
		return errors.New("no character ids given and hephaistos.character_ids is empty")
	}

	lc := server.NewLifecycle(logger)
	defer func() { _ = lc.Close() }()
	ctx, stop := lc.Context(ctx)
	defer stop()

	source, err := buildSource(cfg, lc, logger)
	if err != nil {
		return err
	}
	sinks, err := buildSinks(ctx, cfg, lc, logger)
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		logger.Warn("no sinks enabled; statistics are computed but not stored")
	}

	imp := importer.New(source, sinks,
		importer.WithLogger(logger),
		importer.WithConcurrency(cfg.Hephaistos.Concurrency),
	)
	_, err = imp.Run(ctx, ids)
	return err
}

func buildSource(cfg config.Config, lc *server.Lifecycle, logger *zap.Logger) (*hephaistos.Source, error) {
	clientCfg := hephaistos.ClientConfig{
		Endpoint: cfg.Hephaistos.Endpoint,
		Query:    hephaistos.QueryJSON,
		Timeout:  cfg.Hephaistos.Timeout,
		Logger:   logger,
	}
	if cfg.Hephaistos.Revision == config.RevisionQuery {
		clientCfg.Query = hephaistos.QueryInline
	}
	if cfg.Cache.Enabled {
		client, err := redis.NewClient(cfg.Cache.Addr, nil)
		if err != nil {
			return nil, fmt.Errorf("creating cache client: %w", err)
		}
		lc.Add("cache", client)
		clientCfg.Cache = redis.NewDocumentCache(client, cfg.Cache.TTL)
	}
	return hephaistos.NewSource(hephaistos.NewClient(clientCfg)), nil
}

func buildSinks(ctx context.Context, cfg config.Config, lc *server.Lifecycle, logger *zap.Logger) ([]importer.Sink, error) {
	var sinks []importer.Sink
	if cfg.Notes.Enabled {
		sinks = append(sinks, notes.NewWriter(cfg.Notes.Folder, notes.Options{InitiativeTracker: cfg.Notes.InitiativeTracker}, logger))
	}
	if cfg.Database.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		lc.Add("database", server.CloseFunc(func() error {
			pool.Close()
			return nil
		}))
		sinks = append(sinks, pool.Snapshots())
	}
	return sinks, nil
}
