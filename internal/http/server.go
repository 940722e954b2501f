// Package http exposes the analytics engine over a small JSON API.
package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sightline/internal/analytics"
	"sightline/internal/config"
	"sightline/internal/pkg/geoip"
)

// Server wires the fiber app, the database and the analytics service.
type Server struct {
	app     *fiber.App
	db      *gorm.DB
	cfg     *config.Config
	logger  *slog.Logger
	service *analytics.Service
	geo     *geoip.Resolver
}

func NewServer(cfg *config.Config, logger *slog.Logger, db *gorm.DB, geo *geoip.Resolver) *Server {
	s := &Server{
		app:     fiber.New(fiber.Config{AppName: cfg.AppName, DisableStartupMessage: true}),
		db:      db,
		cfg:     cfg,
		logger:  logger,
		service: analytics.NewService(db, logger),
		geo:     geo,
	}
	s.service.SetRecentEventsLimit(cfg.RecentEventsLimit)
	s.mountRoutes()
	return s
}

func (s *Server) mountRoutes() {
	s.app.Get("/health", s.HealthHandler)

	api := s.app.Group("/api/v1")
	api.Post("/projects", s.CreateProjectHandler)
	api.Get("/projects/:id/analytics", s.GetAnalyticsHandler)
	api.Post("/events", s.CreateEventHandler)
}

// Listen blocks serving HTTP on the configured port.
func (s *Server) Listen() error {
	s.logger.Info("http server listening", slog.String("port", s.cfg.AppPort))
	return s.app.Listen(":" + s.cfg.AppPort)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
