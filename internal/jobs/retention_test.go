package jobs_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sightline/internal/config"
	"sightline/internal/database"
	"sightline/internal/jobs"
	"sightline/internal/testsupport"
)

func newTestManager(t *testing.T, retentionDays int) (*database.DBManager, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		Environment:         config.Test,
		DatabaseName:        filepath.Join(t.TempDir(), "retention_test.db"),
		EventsRetentionDays: retentionDays,
	}
	manager := database.NewDBManager(cfg, testsupport.GetLogger())
	require.NoError(t, manager.Init())
	require.NoError(t, manager.MigrateDatabase())
	t.Cleanup(func() { manager.Close() })
	return manager, cfg
}

func TestRetentionJobPurgesAgedEvents(t *testing.T) {
	manager, cfg := newTestManager(t, 30)
	db := manager.GetConnection()
	project := testsupport.CreateTestProject(t, db, "retention.example.com")

	fresh := time.Now().UTC().Add(-24 * time.Hour)
	aged := time.Now().UTC().AddDate(0, 0, -45)
	testsupport.CreatePageView(t, db, project.ID, "s1", "/", fresh)
	testsupport.CreatePageView(t, db, project.ID, "s2", "/", aged)

	job := jobs.NewRetentionJob(manager, testsupport.GetLogger(), cfg)
	require.NoError(t, job.Run())

	var count int64
	require.NoError(t, db.Table("events").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRetentionJobDisabled(t *testing.T) {
	manager, cfg := newTestManager(t, 0)
	db := manager.GetConnection()
	project := testsupport.CreateTestProject(t, db, "noretention.example.com")

	aged := time.Now().UTC().AddDate(0, 0, -400)
	testsupport.CreatePageView(t, db, project.ID, "s1", "/", aged)

	job := jobs.NewRetentionJob(manager, testsupport.GetLogger(), cfg)
	require.NoError(t, job.Run())

	var count int64
	require.NoError(t, db.Table("events").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
