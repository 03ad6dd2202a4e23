package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
	"github.com/joshdurbin/js4hs-edge/internal/cache/memory"
	"github.com/joshdurbin/js4hs-edge/internal/config"
	"github.com/joshdurbin/js4hs-edge/internal/metrics"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
	"github.com/joshdurbin/js4hs-edge/internal/repository/postgres"
	"github.com/joshdurbin/js4hs-edge/internal/repository/sqlite"
	"github.com/joshdurbin/js4hs-edge/internal/service"
	httpTransport "github.com/joshdurbin/js4hs-edge/internal/transport/http"
)

const shutdownTimeout = 30 * time.Second

// app holds the wired server and the background work it owns
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	jobs      service.JobBoard
	store     *memory.Store
	sweeper   *cache.Sweeper
	scheduler cache.Scheduler
	server    *httpTransport.Server
}

// newApp opens the repository and wires every component
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	m := metrics.New()

	store := memory.New(memory.WithMaxEntryBytes(cfg.Cache.MaxEntryBytes))
	m.RegisterStoreSize(func() int { return store.Len(context.Background()) })

	if cfg.CacheDisabled() {
		logger.Warn().Msg("response cache disabled by CACHE_DISABLED")
	} else if cfg.Cache.Disabled {
		logger.Warn().Msg("CACHE_DISABLED ignored in production")
	}

	responseCache := httpTransport.NewResponseCache(store,
		httpTransport.WithCacheDisabled(cfg.CacheDisabled()),
		httpTransport.WithCacheRecorder(m),
		httpTransport.WithCacheLogger(logger),
	)

	jobs := service.NewJobBoard(repo)
	links := service.NewLinkService(cfg.Links.MaxAge, m, time.Now)

	server := httpTransport.NewServer(httpTransport.Options{
		Jobs:     jobs,
		Links:    links,
		Health:   repo.Ping,
		Cache:    responseCache,
		CacheTTL: cfg.Cache.TTL,
		Metrics:  m.Handler(),
		Logger:   logger,
		Verbose:  cfg.Logging.Verbose,
	}, cfg.Server.Port)

	return &app{
		cfg:       cfg,
		logger:    logger,
		jobs:      jobs,
		store:     store,
		sweeper:   cache.NewSweeper(store, logger, m),
		scheduler: cache.NewTickerScheduler(),
		server:    server,
	}, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.JobRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.Database.URL)
	default:
		return sqlite.New(cfg.Database.Path)
	}
}

// run serves until ctx is cancelled, then shuts down gracefully
func (a *app) run(ctx context.Context) error {
	if err := a.scheduler.Schedule(ctx, a.cfg.Cache.SweepInterval, a.sweeper.Run); err != nil {
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}
	a.logger.Info().Dur("interval", a.cfg.Cache.SweepInterval).Msg("cache sweep scheduled")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("error during server shutdown")
		}
		return a.scheduler.Stop()
	})

	return g.Wait()
}

// close releases the repository
func (a *app) close() {
	if err := a.jobs.Close(); err != nil {
		a.logger.Error().Err(err).Msg("error closing repository")
	}
}
