// Package geoip resolves client IP addresses to ISO country codes via a
// local GeoLite2 database. The database is optional: a missing or
// unconfigured file disables resolution rather than failing startup.
package geoip

import (
	"log/slog"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// Resolver wraps a GeoLite2 country database. The zero value resolves
// nothing, which lets callers use it unconditionally.
type Resolver struct {
	reader *geoip2.Reader
	logger *slog.Logger
}

// NewResolver opens the database at path. An empty path or a missing
// file yields a disabled resolver and no error.
func NewResolver(path string, logger *slog.Logger) *Resolver {
	if path == "" {
		logger.Debug("geoip database not configured, country resolution disabled")
		return &Resolver{logger: logger}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("geoip database not found, country resolution disabled", slog.String("path", path))
		return &Resolver{logger: logger}
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Error("failed to open geoip database", slog.String("path", path), slog.Any("error", err))
		return &Resolver{logger: logger}
	}

	logger.Info("geoip database loaded", slog.String("path", path))
	return &Resolver{reader: reader, logger: logger}
}

// Enabled reports whether a database is loaded.
func (r *Resolver) Enabled() bool {
	return r != nil && r.reader != nil
}

// CountryCode returns the ISO 3166-1 alpha-2 code for an IP address, or
// "" when resolution is disabled or the address is unknown.
func (r *Resolver) CountryCode(ip string) string {
	if !r.Enabled() {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		r.logger.Debug("geoip lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the database handle.
func (r *Resolver) Close() {
	if r.Enabled() {
		r.reader.Close()
	}
}
