// Package scheduler runs the periodic batch jobs: the blood expiry scan and
// the prediction feed refresh.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"relief-ops/config"
	"relief-ops/internal/forecast"
	"relief-ops/internal/service"
)

// jobTimeout upper bound for one job run
const jobTimeout = 2 * time.Minute

// Scheduler cron-driven background jobs
type Scheduler struct {
	cfg       *config.SchedulerConfig
	forecasts service.ForecastService
	notifier  service.Notifier
	logger    *zap.Logger
	cron      *cron.Cron
}

// New creates a scheduler; jobs are registered by Start
func New(cfg *config.SchedulerConfig, forecasts service.ForecastService, notifier service.Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		forecasts: forecasts,
		notifier:  notifier,
		logger:    logger,
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the configured jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("scheduler disabled")
		return nil
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"expiry_scan", s.cfg.ExpiryScanSpec, s.RunExpiryScan},
		{"prediction_refresh", s.cfg.PredictionRefreshSpec, s.RefreshPredictions},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(job.name, job.run) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
		s.logger.Info("job scheduled", zap.String("job", job.name), zap.String("spec", job.spec))
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) run(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Info("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

// RunExpiryScan notifies coordinators about every URGENT unit
func (s *Scheduler) RunExpiryScan(ctx context.Context) error {
	resp, err := s.forecasts.Expiry(ctx, nil)
	if err != nil {
		return err
	}
	for _, r := range resp.Risks {
		if r.Status != forecast.ExpiryUrgent {
			continue
		}
		msg := fmt.Sprintf("Blood unit %s (%s, %s) expires in %d day(s).", r.UnitID, r.BloodType, r.Region, r.DaysLeft)
		s.notifier.NotifyCoordinators(ctx, msg, service.Ref{Type: service.RelatedBloodUnit, ID: r.UnitID})
	}
	return nil
}

// RefreshPredictions pulls the latest batch from the feed when one is configured
func (s *Scheduler) RefreshPredictions(ctx context.Context) error {
	_, err := s.forecasts.RefreshFromFeed(ctx)
	if errors.Is(err, service.ErrNoPredictionFeed) {
		return nil
	}
	return err
}
