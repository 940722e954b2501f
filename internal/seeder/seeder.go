// Package seeder generates demo analytics data for local development.
package seeder

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sightline/internal/events"
	"sightline/internal/projects"
)

const demoDomain = "demo.sightline.local"

var demoPaths = []string{"/", "/", "/", "/pricing", "/blog", "/blog/launch", "/docs", "/about", "/changelog"}

var demoReferrers = []string{"", "", "", "google.com", "news.ycombinator.com", "t.co", "duckduckgo.com", "github.com"}

var demoCountries = []string{"US", "US", "DE", "GB", "FR", "BR", "IN", "JP", ""}

var demoBrowsers = []string{"Chrome", "Chrome", "Chrome", "Firefox", "Safari", "Edge", ""}

var demoDevices = []string{"desktop", "desktop", "mobile", "mobile", "tablet"}

var demoEventNames = []string{"signup", "signup", "checkout", "newsletter_subscribe"}

// Seeder fills the demo project with plausible traffic spread over the
// last year, so every shipped date range has data to show.
type Seeder struct {
	db           *gorm.DB
	logger       *slog.Logger
	sessionCount int
}

func NewSeeder(db *gorm.DB, logger *slog.Logger, sessionCount int) *Seeder {
	if sessionCount <= 0 {
		sessionCount = 500
	}
	return &Seeder{db: db, logger: logger, sessionCount: sessionCount}
}

// Seed creates the demo project and its traffic. It is idempotent: an
// existing demo project short-circuits the run.
func (s *Seeder) Seed() error {
	start := time.Now()

	if _, err := projects.GetByDomain(s.db, demoDomain); err == nil {
		s.logger.Debug("demo project already seeded, skipping")
		return nil
	} else if !errors.Is(err, projects.ErrProjectNotFound) {
		return fmt.Errorf("checking for demo project: %w", err)
	}

	project, err := projects.Create(s.db, "Demo", demoDomain)
	if err != nil {
		return fmt.Errorf("creating demo project: %w", err)
	}

	now := time.Now().UTC()
	batch := make([]events.Event, 0, s.sessionCount*3)
	for i := 0; i < s.sessionCount; i++ {
		batch = append(batch, s.sessionEvents(project.ID, now)...)
	}

	if err := s.db.CreateInBatches(batch, 200).Error; err != nil {
		return fmt.Errorf("inserting demo events: %w", err)
	}

	s.logger.Info("demo data seeded",
		slog.String("domain", demoDomain),
		slog.Int("sessions", s.sessionCount),
		slog.Int("events", len(batch)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// sessionEvents fabricates one visit: one to five page views a few
// minutes apart, sometimes followed by a custom event.
func (s *Seeder) sessionEvents(projectID string, now time.Time) []events.Event {
	sessionID := uuid.NewString()

	// Skew traffic toward the recent past so the short ranges look alive.
	var age time.Duration
	if rand.IntN(100) < 60 {
		age = time.Duration(rand.Int64N(int64(30 * 24 * time.Hour)))
	} else {
		age = time.Duration(rand.Int64N(int64(365 * 24 * time.Hour)))
	}
	at := now.Add(-age)

	country := pick(demoCountries)
	browser := pick(demoBrowsers)
	device := pick(demoDevices)
	referrer := pick(demoReferrers)

	views := 1 + rand.IntN(5)
	visit := make([]events.Event, 0, views+1)
	for v := 0; v < views; v++ {
		visit = append(visit, events.Event{
			ProjectID:        projectID,
			SessionID:        sessionID,
			EventType:        events.EventTypePageView,
			Hostname:         demoDomain,
			Pathname:         pick(demoPaths),
			ReferrerHostname: referrer,
			Country:          country,
			Browser:          browser,
			Device:           device,
			Timestamp:        at,
		})
		at = at.Add(time.Duration(30+rand.IntN(240)) * time.Second)
		// Only the landing view carries the referrer.
		referrer = ""
	}

	if rand.IntN(100) < 15 {
		visit = append(visit, events.Event{
			ProjectID:       projectID,
			SessionID:       sessionID,
			EventType:       events.EventTypeCustomEvent,
			Hostname:        demoDomain,
			Pathname:        pick(demoPaths),
			Country:         country,
			Browser:         browser,
			Device:          device,
			CustomEventName: pick(demoEventNames),
			Timestamp:       at,
		})
	}
	return visit
}

func pick(values []string) string {
	return values[rand.IntN(len(values))]
}
