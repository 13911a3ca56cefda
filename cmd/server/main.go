package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blakelabs/crt/internal/config"
	"github.com/blakelabs/crt/internal/core"
	_ "github.com/blakelabs/crt/internal/core/catalogues" // Register the catalogue set
	"github.com/blakelabs/crt/internal/logging"
	"github.com/blakelabs/crt/internal/metrics"
	"github.com/blakelabs/crt/internal/source"
	"github.com/blakelabs/crt/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalogue_source", cfg.Catalogue.Source,
		"append_enabled", cfg.Catalogue.AppendEnabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	src, views, cleanup, err := buildSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to create catalogue source", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rec := metrics.New()
	hub := core.NewHub(src, core.WithMetrics(rec))

	// Load the catalogue set up front. A partial failure is tolerated:
	// the hub keeps serving the catalogues that did load.
	if err := hub.Preload(ctx); err != nil {
		slog.Warn("catalogue preload incomplete", "error", err)
	}

	slog.Info("catalogues registered",
		"count", core.CatalogueCount(),
		"backbone", len(core.ByKind(core.KindBackbone)),
		"append_only", len(core.ByKind(core.KindAppendOnly)),
	)

	// Refresh derived JSON views in the background of startup
	if views != nil && cfg.Catalogue.ViewsEnabled {
		written := views.EnsureAll(false)
		slog.Info("JSON views refreshed", "count", len(written))
	}

	server := web.NewServer(hub, views, cfg, rec)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// buildSource constructs the configured catalogue source. The returned
// ViewBuilder is non-nil only for the dir driver, where catalogue CSVs
// are locally available for projection.
func buildSource(ctx context.Context, cfg *config.Config) (source.Source, *core.ViewBuilder, func(), error) {
	noop := func() {}

	switch cfg.Catalogue.Source {
	case source.DriverDir:
		dir, err := source.NewDir(cfg.Catalogue.Dir)
		if err != nil {
			return nil, nil, noop, err
		}
		return dir, core.NewViewBuilder(cfg.Catalogue.Dir), noop, nil

	case source.DriverPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, nil, noop, err
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, noop, err
		}
		return source.NewPostgres(pool), nil, pool.Close, nil

	case source.DriverS3:
		s3src, err := source.NewS3(ctx, source.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		return s3src, nil, noop, nil

	default:
		// Config validation rejects unknown drivers before this point.
		return nil, nil, noop, fmt.Errorf("unknown catalogue source driver %q", cfg.Catalogue.Source)
	}
}
