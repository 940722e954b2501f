// Package testsupport provides shared database setup and data factories
// for package tests.
package testsupport

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sightline/internal/events"
	sllogger "sightline/internal/logger"
	"sightline/internal/projects"
)

// testDBCache caches test databases by root test name so multiple calls
// within the same test share one database.
var (
	testDBCache   = make(map[string]*gorm.DB)
	testDBCacheMu sync.Mutex
)

// FixedClock implements timerange.TimeProvider with a frozen instant.
type FixedClock struct {
	FixedTime time.Time
}

func (c *FixedClock) Now(loc *time.Location) time.Time {
	return c.FixedTime.In(loc)
}

// GetLogger returns a logger that discards all output.
func GetLogger() *slog.Logger {
	return sllogger.NewSilent()
}

func allModels() []any {
	return []any{
		&events.Event{},
		&projects.Project{},
	}
}

// SetupTestDB creates a named shared in-memory database with all models
// migrated. Repeated calls within the same root test return the same
// database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestProject registers a project for the given domain.
func CreateTestProject(t *testing.T, db *gorm.DB, domain string) projects.Project {
	t.Helper()
	project, err := projects.Create(db, domain, domain)
	if err != nil {
		t.Fatalf("testsupport: failed to create project: %v", err)
	}
	return project
}

// EventOption mutates an event before insertion.
type EventOption func(*events.Event)

func WithCountry(country string) EventOption {
	return func(e *events.Event) { e.Country = country }
}

func WithBrowser(browser string) EventOption {
	return func(e *events.Event) { e.Browser = browser }
}

func WithDevice(device string) EventOption {
	return func(e *events.Event) { e.Device = device }
}

func WithReferrer(host string) EventOption {
	return func(e *events.Event) { e.ReferrerHostname = host }
}

// CreatePageView inserts one page-view record.
func CreatePageView(t *testing.T, db *gorm.DB, projectID, sessionID, pathname string, timestamp time.Time, opts ...EventOption) events.Event {
	t.Helper()
	event := events.Event{
		ProjectID: projectID,
		SessionID: sessionID,
		EventType: events.EventTypePageView,
		Hostname:  "example.com",
		Pathname:  pathname,
		Timestamp: timestamp.UTC(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("testsupport: failed to create page view: %v", err)
	}
	return event
}

// CreateCustomEvent inserts one custom-event record.
func CreateCustomEvent(t *testing.T, db *gorm.DB, projectID, sessionID, name string, timestamp time.Time, opts ...EventOption) events.Event {
	t.Helper()
	event := events.Event{
		ProjectID:       projectID,
		SessionID:       sessionID,
		EventType:       events.EventTypeCustomEvent,
		Hostname:        "example.com",
		Pathname:        "/",
		CustomEventName: name,
		Timestamp:       timestamp.UTC(),
	}
	for _, opt := range opts {
		opt(&event)
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("testsupport: failed to create custom event: %v", err)
	}
	return event
}
