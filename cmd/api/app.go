package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jwalitptl/frontdesk-scheduler/config"
	"github.com/jwalitptl/frontdesk-scheduler/internal/handler/health"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository/memory"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository/postgres"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/appointment"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/cache"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/logger"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/metrics"
)

// app holds the services shared by every command
type app struct {
	cfg          *config.Config
	loc          *time.Location
	logger       *logger.Logger
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	store        repository.Store
	cache        cache.Cache
	checks       []health.Check
	appointments *appointment.Service
	schedules    *schedule.Service
}

func newApp(ctx context.Context, configFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if logOut == nil {
		logOut = os.Stderr
	}
	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     logOut,
		JSON:       cfg.Log.Format == "json",
	})
	log.SetGlobal()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &app{
		cfg:      cfg,
		loc:      loc,
		logger:   log,
		registry: registry,
		metrics:  metrics.NewMetrics(registry, "scheduler"),
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	if err := a.openCache(ctx); err != nil {
		a.Close()
		return nil, err
	}

	opts := []appointment.Option{
		appointment.WithMetrics(a.metrics),
		appointment.WithLogger(log),
		appointment.WithLocation(loc),
	}
	if a.cache != nil {
		opts = append(opts, appointment.WithCache(a.cache, cfg.Cache.TTL))
	}
	a.appointments = appointment.NewService(a.store, opts...)
	a.schedules = schedule.NewService(a.appointments, cfg.Calendar)

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Data.Source {
	case config.DataSourcePostgres:
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		store := postgres.NewStore(db, a.logger)
		a.store = store
		a.checks = append(a.checks, health.Check{Name: "database", Ping: store.Ping})
	default:
		store, err := memory.NewWithFixtures(time.Now().In(a.loc), memory.Options{Latency: a.cfg.Data.Latency})
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
		a.store = store
	}

	a.logger.Info("Data source ready", "source", a.cfg.Data.Source)
	return nil
}

func (a *app) openCache(ctx context.Context) error {
	if !a.cfg.Cache.Enabled {
		return nil
	}

	switch a.cfg.Cache.Backend {
	case config.CacheBackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:          a.cfg.Redis.URL,
			Prefix:       a.cfg.Redis.Prefix,
			MaxRetries:   a.cfg.Redis.MaxRetries,
			RetryBackoff: a.cfg.Redis.RetryBackoff,
			PoolSize:     a.cfg.Redis.PoolSize,
			MinIdleConns: a.cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return err
		}
		a.cache = rc
		a.checks = append(a.checks, health.Check{Name: "redis", Ping: rc.Ping})
	default:
		a.cache = cache.NewMemoryCache(a.cfg.Cache.TTL, a.cfg.Cache.CleanupInterval)
	}

	a.logger.Info("Memo cache ready", "backend", a.cache.Name(), "ttl", a.cfg.Cache.TTL.String())
	return nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error(err, "Failed to close cache")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error(err, "Failed to close data source")
		}
	}
}

// today is the start of the current day in the configured zone
func (a *app) today() time.Time {
	y, m, d := time.Now().In(a.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.loc)
}
