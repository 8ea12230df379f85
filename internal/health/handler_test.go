package health

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/service"
)

type fixedJobs map[string]service.JobStatus

func (f fixedJobs) Status() map[string]service.JobStatus { return f }

type fixedProbe service.HealthSnapshot

func (f fixedProbe) Snapshot() service.HealthSnapshot { return service.HealthSnapshot(f) }

var checkedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func serve(t *testing.T, probe StoreProbe, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	jobs := fixedJobs{
		service.JobReminders: {Name: service.JobReminders, Cadence: "every 1h0m0s", Runs: 3, LastError: "store down"},
	}
	h := NewHandler(jobs, probe, "1.2.3", slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec, body
}

func TestBasicAndLive(t *testing.T) {
	rec, body := serve(t, fixedProbe{}, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, body = serve(t, fixedProbe{}, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])
}

func TestDetailedHealthy(t *testing.T) {
	rec, body := serve(t, fixedProbe{Healthy: true, CheckedAt: checkedAt}, "/health/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])

	store := body["store"].(map[string]any)
	assert.Equal(t, "healthy", store["status"])
	assert.Equal(t, true, store["healthy"])

	jobs := body["jobs"].(map[string]any)
	reminders := jobs[service.JobReminders].(map[string]any)
	assert.EqualValues(t, 3, reminders["runs"])
	assert.Equal(t, "store down", reminders["last_error"])
	assert.Equal(t, false, reminders["running"])
}

func TestDetailedUnhealthy(t *testing.T) {
	probe := fixedProbe{CheckedAt: checkedAt, Error: "connection refused", ConsecutiveFailures: 4}
	rec, body := serve(t, probe, "/health/detailed")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])

	store := body["store"].(map[string]any)
	assert.Equal(t, "connection refused", store["error"])
	assert.EqualValues(t, 4, store["consecutive_failures"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		probe  fixedProbe
		code   int
		status string
	}{
		{"healthy", fixedProbe{Healthy: true, CheckedAt: checkedAt}, http.StatusOK, "ready"},
		{"unhealthy", fixedProbe{CheckedAt: checkedAt, Error: "timeout"}, http.StatusServiceUnavailable, "not ready"},
		{"not yet probed", fixedProbe{}, http.StatusServiceUnavailable, "not ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, tt.probe, "/health/ready")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.status, body["status"])
		})
	}
}
