package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sightline/internal/analytics"
	"sightline/internal/events"
	"sightline/internal/projects"
	"sightline/internal/timerange"
)

// GetAnalyticsHandler serves the aggregated dashboard payload for a
// project. Query parameters: range (one of the fixed range keys),
// timezone (IANA name, required), and optional comma-separated
// dimension filters country/browser/device/source.
func (s *Server) GetAnalyticsHandler(ctx *fiber.Ctx) error {
	rangeKey := ctx.Query("range", string(timerange.RangeLast7Days))
	timezone := ctx.Query("timezone")

	params := analytics.ComputeParams{
		ProjectID: ctx.Params("id"),
		RangeKey:  timerange.RangeKey(rangeKey),
		Timezone:  timezone,
		Filters: events.Filters{
			Countries: splitFilter(ctx.Query("country")),
			Browsers:  splitFilter(ctx.Query("browser")),
			Devices:   splitFilter(ctx.Query("device")),
			Sources:   splitFilter(ctx.Query("source")),
		},
	}

	report, err := s.service.Compute(ctx.UserContext(), params)
	if err != nil {
		return s.analyticsError(ctx, err)
	}

	report.Countries = prettifyCountries(report.Countries)
	report.Devices = prettifyDevices(report.Devices)
	return ctx.JSON(report)
}

func (s *Server) analyticsError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, projects.ErrInvalidProjectID),
		errors.Is(err, timerange.ErrInvalidRangeKey),
		errors.Is(err, timerange.ErrInvalidTimezone):
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, projects.ErrProjectNotFound):
		return ctx.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		s.logger.Error("analytics request failed", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to compute analytics"})
	}
}

func splitFilter(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// prettifyCountries converts ISO country codes to common names; unknown
// codes pass through upper-cased.
func prettifyCountries(items []analytics.RankedResult) []analytics.RankedResult {
	caser := cases.Upper(language.AmericanEnglish)
	countries := gountries.New()

	result := make([]analytics.RankedResult, len(items))
	for i, item := range items {
		result[i] = item
		if item.Key == events.UnknownCountry {
			continue
		}
		country, err := countries.FindCountryByAlpha(item.Key)
		if err != nil {
			result[i].Key = caser.String(item.Key)
			continue
		}
		result[i].Key = country.Name.Common
	}
	return result
}

func prettifyDevices(items []analytics.RankedResult) []analytics.RankedResult {
	caser := cases.Title(language.AmericanEnglish)

	result := make([]analytics.RankedResult, len(items))
	for i, item := range items {
		result[i] = item
		result[i].Key = caser.String(item.Key)
	}
	return result
}
