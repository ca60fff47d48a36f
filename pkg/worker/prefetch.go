package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/frontdesk-scheduler/internal/calendar"
	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/logger"
	"github.com/jwalitptl/frontdesk-scheduler/pkg/metrics"
)

// Source is the memoising data service the prefetcher warms
type Source interface {
	AllDoctors(ctx context.Context) ([]model.Doctor, error)
	AppointmentsByDoctorAndDateRange(ctx context.Context, doctorID string, start, end time.Time) ([]model.Appointment, error)
	Location() *time.Location
}

type PrefetchConfig struct {
	Interval      time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Prefetcher loads the current week of every doctor on a schedule so the
// first page view of the week is served from the memo cache
type Prefetcher struct {
	source  Source
	config  PrefetchConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPrefetcher(source Source, config PrefetchConfig, log *logger.Logger, m *metrics.Metrics) (*Prefetcher, error) {
	if config.Interval <= 0 {
		return nil, errors.New("prefetch interval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		return nil, errors.New("prefetch retry attempts must be greater than 0")
	}
	if config.RetryDelay < 0 {
		return nil, errors.New("prefetch retry delay must not be negative")
	}
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.NewNop()
	}

	return &Prefetcher{
		source:  source,
		config:  config,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Start warms the cache immediately and then every interval until ctx ends
func (p *Prefetcher) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.logger.Info("Starting prefetch worker", "interval", p.config.Interval.String())

	for {
		if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error(err, "Prefetch pass failed")
		}

		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down prefetch worker")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce warms the current week of every doctor. A doctor that still fails
// after the retries is logged and skipped.
func (p *Prefetcher) RunOnce(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.PrefetchLatency)
	defer timer.ObserveDuration()

	var doctors []model.Doctor
	err := p.retry(ctx, func() error {
		var err error
		doctors, err = p.source.AllDoctors(ctx)
		return err
	})
	if err != nil {
		p.metrics.PrefetchRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to list doctors: %w", err)
	}

	start := calendar.WeekStart(p.now().In(p.source.Location()))
	end := calendar.WeekEnd(start)

	failed := 0
	for _, doc := range doctors {
		err := p.retry(ctx, func() error {
			_, err := p.source.AppointmentsByDoctorAndDateRange(ctx, doc.ID, start, end)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				p.metrics.PrefetchRuns.WithLabelValues("cancelled").Inc()
				return ctx.Err()
			}
			failed++
			p.logger.Error(err, "Failed to prefetch week", "doctor_id", doc.ID)
		}
	}

	switch {
	case failed == 0:
		p.metrics.PrefetchRuns.WithLabelValues("success").Inc()
	case failed == len(doctors):
		p.metrics.PrefetchRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("prefetch failed for all %d doctors", failed)
	default:
		p.metrics.PrefetchRuns.WithLabelValues("partial").Inc()
	}

	p.logger.Debug("Prefetched current week",
		"doctors", len(doctors),
		"failed", failed,
		"week_start", start.Format(model.DateLayout))
	return nil
}

// retry runs fn up to RetryAttempts times, waiting RetryDelay in between
func (p *Prefetcher) retry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i < p.config.RetryAttempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == p.config.RetryAttempts-1 {
			break
		}
		p.metrics.PrefetchRetries.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.config.RetryDelay):
		}
	}
	return err
}
