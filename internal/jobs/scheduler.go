package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sightline/internal/config"
	"sightline/internal/database"
)

// retentionInterval is how often the retention job wakes up. Deletions
// are idempotent, so the exact cadence is not critical.
const retentionInterval = 6 * time.Hour

// Scheduler runs background maintenance jobs on tickers.
type Scheduler struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	// Guards against overlapping runs of the same job.
	mu        sync.Mutex
	isRunning bool

	retentionJob    *RetentionJob
	retentionTicker *time.Ticker
}

func NewScheduler(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		dbManager:    dbManager,
		logger:       logger,
		cfg:          cfg,
		ctx:          ctx,
		cancel:       cancel,
		retentionJob: NewRetentionJob(dbManager, logger, cfg),
	}
}

// Start launches the job loops. It is a no-op when no job is enabled.
func (s *Scheduler) Start() {
	if s.cfg.EventsRetentionDays <= 0 {
		s.logger.Debug("event retention disabled, scheduler idle")
		return
	}

	s.retentionTicker = time.NewTicker(retentionInterval)
	go s.loop(s.retentionTicker, "retention", s.retentionJob.Run)

	s.logger.Info("job scheduler started",
		slog.Int("retention_days", s.cfg.EventsRetentionDays),
		slog.Duration("interval", retentionInterval))
}

func (s *Scheduler) loop(ticker *time.Ticker, name string, run func() error) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(name, run)
		}
	}
}

func (s *Scheduler) runOnce(name string, run func() error) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		s.logger.Debug("skipping job, previous run still in progress", slog.String("job", name))
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	if err := run(); err != nil {
		s.logger.Error("background job failed", slog.String("job", name), slog.Any("error", err))
	}
}

// Stop halts all job loops.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.retentionTicker != nil {
		s.retentionTicker.Stop()
	}
}
