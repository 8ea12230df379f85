// Package health serves liveness, readiness and job status over HTTP.
package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"projecthub/internal/service"
)

// JobStatuses reports scheduler state.
type JobStatuses interface {
	Status() map[string]service.JobStatus
}

// StoreProbe reports the last store connectivity check.
type StoreProbe interface {
	Snapshot() service.HealthSnapshot
}

type Handler struct {
	jobs    JobStatuses
	store   StoreProbe
	log     *slog.Logger
	version string
	started time.Time
	now     func() time.Time
}

func NewHandler(jobs JobStatuses, store StoreProbe, version string, log *slog.Logger) *Handler {
	return &Handler{
		jobs:    jobs,
		store:   store,
		log:     log,
		version: version,
		started: time.Now(),
		now:     time.Now,
	}
}

// Routes mounts the health endpoints under /health.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.basic)
		r.Get("/detailed", h.detailed)
		r.Get("/live", h.live)
		r.Get("/ready", h.ready)
	})
	return r
}

type storeCheck struct {
	Status string `json:"status"`
	service.HealthSnapshot
}

type detailedResponse struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Uptime    string                       `json:"uptime"`
	Version   string                       `json:"version"`
	Store     storeCheck                   `json:"store"`
	Jobs      map[string]service.JobStatus `json:"jobs"`
}

func (h *Handler) basic(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": h.now().UTC()})
}

func (h *Handler) detailed(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	resp := detailedResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Uptime:    h.now().Sub(h.started).Round(time.Second).String(),
		Version:   h.version,
		Store:     storeCheck{Status: storeState(snap), HealthSnapshot: snap},
		Jobs:      h.jobs.Status(),
	}

	code := http.StatusOK
	if resp.Store.Status == "unhealthy" {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	switch storeState(snap) {
	case "healthy":
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	case "unknown":
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": "database not checked yet"})
	default:
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": snap.Error})
	}
}

func storeState(snap service.HealthSnapshot) string {
	switch {
	case snap.CheckedAt.IsZero():
		return "unknown"
	case snap.Healthy:
		return "healthy"
	default:
		return "unhealthy"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to write health response", "error", err)
	}
}
