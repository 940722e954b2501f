package jobs

import (
	"log/slog"
	"time"

	"sightline/internal/config"
	"sightline/internal/database"
	"sightline/internal/events"
)

// RetentionJob deletes raw events older than the retention period. Aged
// events no longer contribute to any shipped date range, so dropping
// them only reduces storage.
type RetentionJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewRetentionJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *RetentionJob {
	return &RetentionJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run removes events past the retention cutoff. A retention of 0 days
// keeps everything.
func (j *RetentionJob) Run() error {
	retentionDays := j.cfg.EventsRetentionDays
	if retentionDays <= 0 {
		return nil
	}

	db := j.dbManager.GetConnection()
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	result := db.Where("timestamp < ?", cutoff).Delete(&events.Event{})
	if result.Error != nil {
		j.logger.Error("event retention cleanup failed", slog.Any("error", result.Error))
		return result.Error
	}

	if result.RowsAffected > 0 {
		j.logger.Info("purged aged events",
			slog.Int64("deleted", result.RowsAffected),
			slog.Time("cutoff", cutoff),
			slog.Int("retention_days", retentionDays))
	}
	return nil
}
