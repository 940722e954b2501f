// Package logger builds the application slog.Logger with a rotating
// file sink.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"sightline/internal/config"
)

// New creates a logger writing to stdout and a size-rotated log file
// under the configured logs directory.
func New(cfg *config.Config) *slog.Logger {
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
		MaxSize:    cfg.LogsMaxSizeInMb,
		MaxBackups: cfg.LogsMaxBackups,
		MaxAge:     cfg.LogsMaxAgeInDays,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), &slog.HandlerOptions{
		Level: level(cfg.LogLevel),
	})
	return slog.New(handler)
}

// NewSilent creates a logger that discards everything; used in tests.
func NewSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func level(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
