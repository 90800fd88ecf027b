// Package scheduler reruns the pipeline for the configured location on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"

	"solar-platform/internal/services"
	"solar-platform/pkg/logging"
)

// PipelineRunner runs one ingest and model pass
type PipelineRunner interface {
	Run(ctx context.Context, req services.IngestionRequest) (*services.PipelineResult, error)
}

// Scheduler wraps a gocron scheduler with a single pipeline job
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    PipelineRunner
	request   services.IngestionRequest
	interval  time.Duration
	timeout   time.Duration
	logger    *logging.StructuredLogger
}

// New creates a scheduler. Each run is bounded by timeout.
func New(runner PipelineRunner, req services.IngestionRequest, interval, timeout time.Duration, logger *logging.StructuredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		request:   req,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the job and starts it in the background. The first run
// happens immediately; overlapping runs are skipped.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.logger.Info(context.Background(), "[SCHEDULER_START] Pipeline scheduled", logging.Fields{
		"interval": s.interval.String(),
		"location": s.request.Name,
	})
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info(ctx, "[SCHEDULER_RUN] Running scheduled pipeline", logging.Fields{
		"location": s.request.Name,
	})
	if _, err := s.runner.Run(ctx, s.request); err != nil {
		s.logger.Error(ctx, "[SCHEDULER_RUN_ERROR] Scheduled pipeline failed", logging.Fields{
			"location": s.request.Name,
		}, err)
	}
}

// Stop stops the scheduler and cancels any future runs
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
