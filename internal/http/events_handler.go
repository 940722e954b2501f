package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"sightline/internal/events"
	"sightline/internal/pkg/user_agent"
	"sightline/internal/projects"
)

// CreateEventParams is the collector payload for one tracked record.
type CreateEventParams struct {
	ProjectID string           `json:"projectId"`
	SessionID string           `json:"sessionId"`
	EventType events.EventType `json:"eventType"`
	URL       string           `json:"url"`
	Referrer  string           `json:"referrer"`
	Country   string           `json:"country"`
	Browser   string           `json:"browser"`
	OS        string           `json:"os"`
	Device    string           `json:"device"`
	EventName string           `json:"eventName"`
	EventMeta string           `json:"eventMeta"`
	Timestamp time.Time        `json:"timestamp"`
}

// CreateEventHandler ingests one event row. The aggregation engine
// itself never writes events; this endpoint stands in for the tracking
// collector.
func (s *Server) CreateEventHandler(ctx *fiber.Ctx) error {
	var params CreateEventParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if params.ProjectID == "" || params.SessionID == "" || params.URL == "" {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "projectId, sessionId and url are required"})
	}
	if params.EventType != events.EventTypePageView && params.EventType != events.EventTypeCustomEvent {
		params.EventType = events.EventTypePageView
	}

	if err := projects.ValidateID(params.ProjectID); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := projects.GetByID(s.db, params.ProjectID); err != nil {
		if errors.Is(err, projects.ErrProjectNotFound) {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found - register the domain first"})
		}
		s.logger.Error("failed to look up project", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to collect event"})
	}

	pageURL, err := url.Parse(params.URL)
	if err != nil || pageURL.Hostname() == "" {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid url"})
	}
	pathname := pageURL.Path
	if pathname == "" {
		pathname = "/"
	}

	timestamp := params.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	// Payload fields win; the User-Agent header and GeoIP only fill gaps.
	if params.Browser == "" || params.Device == "" || params.OS == "" {
		if ua := ctx.Get(fiber.HeaderUserAgent); ua != "" {
			client := user_agent.Parse(ua)
			if params.Browser == "" {
				params.Browser = client.Browser
			}
			if params.OS == "" {
				params.OS = client.OperatingSystem
			}
			if params.Device == "" {
				params.Device = client.Device
			}
		}
	}
	if params.Country == "" && s.geo.Enabled() {
		params.Country = s.geo.CountryCode(ctx.IP())
	}

	event := events.Event{
		ProjectID:        params.ProjectID,
		SessionID:        params.SessionID,
		EventType:        params.EventType,
		Hostname:         pageURL.Hostname(),
		Pathname:         pathname,
		ReferrerHostname: events.ReferrerHost(params.Referrer),
		Country:          params.Country,
		Browser:          params.Browser,
		OperatingSystem:  params.OS,
		Device:           params.Device,
		CustomEventName:  params.EventName,
		CustomEventMeta:  params.EventMeta,
		Timestamp:        timestamp.UTC(),
	}
	if err := s.db.WithContext(ctx.UserContext()).Create(&event).Error; err != nil {
		s.logger.Error("failed to collect event", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to collect event"})
	}

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{"status": http.StatusAccepted})
}

// CreateProjectParams registers a tracked site.
type CreateProjectParams struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// CreateProjectHandler registers a new project and returns its id.
func (s *Server) CreateProjectHandler(ctx *fiber.Ctx) error {
	var params CreateProjectParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if params.Name == "" || params.Domain == "" {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name and domain are required"})
	}

	project, err := projects.Create(s.db, params.Name, params.Domain)
	if err != nil {
		s.logger.Error("failed to create project", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create project"})
	}
	return ctx.Status(http.StatusCreated).JSON(project)
}
