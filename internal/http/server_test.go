package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sightline/internal/analytics"
	"sightline/internal/config"
	sightlinehttp "sightline/internal/http"
	"sightline/internal/pkg/geoip"
	"sightline/internal/testsupport"
)

func newTestServer(t *testing.T) *sightlinehttp.Server {
	t.Helper()
	db := testsupport.SetupTestDB(t)
	cfg := &config.Config{
		AppName:     "sightline-test",
		AppPort:     "0",
		Environment: config.Test,
	}
	geo := geoip.NewResolver("", testsupport.GetLogger())
	return sightlinehttp.NewServer(cfg, testsupport.GetLogger(), db, geo)
}

func decodeBody(t *testing.T, body io.Reader, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCreateProjectEndpoint(t *testing.T) {
	server := newTestServer(t)

	t.Run("creates and returns the project", func(t *testing.T) {
		payload := bytes.NewBufferString(`{"name":"Docs","domain":"docs.example.com"}`)
		req := httptest.NewRequest("POST", "/api/v1/projects", payload)
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		var body struct {
			ID     string `json:"id"`
			Domain string `json:"domain"`
		}
		decodeBody(t, resp.Body, &body)
		assert.NotEmpty(t, body.ID)
		assert.Equal(t, "docs.example.com", body.Domain)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		payload := bytes.NewBufferString(`{"name":"Docs"}`)
		req := httptest.NewRequest("POST", "/api/v1/projects", payload)
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func createProjectViaAPI(t *testing.T, server *sightlinehttp.Server, domain string) string {
	t.Helper()
	payload := bytes.NewBufferString(fmt.Sprintf(`{"name":%q,"domain":%q}`, domain, domain))
	req := httptest.NewRequest("POST", "/api/v1/projects", payload)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	var body struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp.Body, &body)
	return body.ID
}

func TestCreateEventEndpoint(t *testing.T) {
	server := newTestServer(t)
	projectID := createProjectViaAPI(t, server, "collect.example.com")

	postEvent := func(body string) int {
		t.Helper()
		req := httptest.NewRequest("POST", "/api/v1/events", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.App().Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	t.Run("accepts a page view", func(t *testing.T) {
		status := postEvent(fmt.Sprintf(
			`{"projectId":%q,"sessionId":"s1","url":"https://collect.example.com/pricing","country":"US"}`,
			projectID))
		assert.Equal(t, 202, status)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		status := postEvent(fmt.Sprintf(`{"projectId":%q,"sessionId":"s1"}`, projectID))
		assert.Equal(t, 400, status)
	})

	t.Run("rejects unparseable url", func(t *testing.T) {
		status := postEvent(fmt.Sprintf(
			`{"projectId":%q,"sessionId":"s1","url":"not a url"}`, projectID))
		assert.Equal(t, 400, status)
	})

	t.Run("unknown project", func(t *testing.T) {
		status := postEvent(
			`{"projectId":"123e4567-e89b-12d3-a456-426614174000","sessionId":"s1","url":"https://x.example.com/"}`)
		assert.Equal(t, 404, status)
	})
}

func TestGetAnalyticsEndpoint(t *testing.T) {
	server := newTestServer(t)
	projectID := createProjectViaAPI(t, server, "analytics.example.com")

	// Two recent page views from one session, well inside last_24_hours.
	recent := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
	for _, path := range []string{"/", "/pricing"} {
		body := fmt.Sprintf(
			`{"projectId":%q,"sessionId":"s1","url":"https://analytics.example.com%s","country":"US","timestamp":%q}`,
			projectID, path, recent)
		req := httptest.NewRequest("POST", "/api/v1/events", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.App().Test(req)
		require.NoError(t, err)
		require.Equal(t, 202, resp.StatusCode)
	}

	t.Run("aggregated report", func(t *testing.T) {
		url := fmt.Sprintf("/api/v1/projects/%s/analytics?range=last_24_hours&timezone=UTC", projectID)
		resp, err := server.App().Test(httptest.NewRequest("GET", url, nil), -1)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var report analytics.Report
		decodeBody(t, resp.Body, &report)

		assert.Equal(t, float64(2), report.PageViews.Total)
		assert.Equal(t, float64(1), report.UniqueUsers.Total)
		assert.Equal(t, "hour", report.Granularity)
		assert.Len(t, report.PageViews.Series, 24)

		require.Len(t, report.Countries, 1)
		// ISO code rendered as a display name.
		assert.Equal(t, "United States", report.Countries[0].Key)
	})

	t.Run("bad project id", func(t *testing.T) {
		resp, err := server.App().Test(httptest.NewRequest("GET", "/api/v1/projects/nope/analytics?timezone=UTC", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("unknown project", func(t *testing.T) {
		resp, err := server.App().Test(httptest.NewRequest("GET",
			"/api/v1/projects/123e4567-e89b-12d3-a456-426614174000/analytics?timezone=UTC", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("bad range key", func(t *testing.T) {
		url := fmt.Sprintf("/api/v1/projects/%s/analytics?range=last_week&timezone=UTC", projectID)
		resp, err := server.App().Test(httptest.NewRequest("GET", url, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("missing timezone", func(t *testing.T) {
		url := fmt.Sprintf("/api/v1/projects/%s/analytics", projectID)
		resp, err := server.App().Test(httptest.NewRequest("GET", url, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}
