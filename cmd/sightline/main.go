// main.go - HTTP server application
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sightline/internal/config"
	"sightline/internal/database"
	"sightline/internal/http"
	"sightline/internal/jobs"
	"sightline/internal/logger"
	"sightline/internal/pkg/geoip"
	"sightline/internal/seeder"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	cfg := config.GetConfig()
	appLogger := logger.New(cfg)

	dbManager := database.NewDBManager(cfg, appLogger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbManager.Close()

	log.Println("Running database migrations...")
	if err := dbManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.SeedDemoData && cfg.Environment == config.Development {
		if err := seeder.NewSeeder(dbManager.GetConnection(), appLogger, 0).Seed(); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	geoResolver := geoip.NewResolver(cfg.GeoDBPath, appLogger)
	defer geoResolver.Close()

	scheduler := jobs.NewScheduler(dbManager, appLogger, cfg)
	scheduler.Start()
	defer scheduler.Stop()

	server := http.NewServer(cfg, appLogger, dbManager.GetConnection(), geoResolver)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Listen()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	log.Println("Initiating graceful shutdown...")
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
	log.Println("Server shutdown complete")
}
