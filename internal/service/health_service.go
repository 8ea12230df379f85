package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const healthPingTimeout = 5 * time.Second

// HealthSnapshot is the outcome of the most recent store probe.
type HealthSnapshot struct {
	Healthy             bool      `json:"healthy"`
	CheckedAt           time.Time `json:"checked_at"`
	Error               string    `json:"error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// HealthCheckJob probes store connectivity. Run never fails; the result is
// kept for the health endpoint.
type HealthCheckJob struct {
	store Pinger
	log   *slog.Logger
	now   func() time.Time

	mu   sync.RWMutex
	last HealthSnapshot
}

func NewHealthCheckJob(store Pinger, log *slog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		store: store,
		log:   log.With("job", JobHealthCheck),
		now:   utcNow,
	}
}

func (j *HealthCheckJob) Run(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	err := guard(func() error { return j.store.Ping(pingCtx) })
	now := j.now()

	j.mu.Lock()
	prev := j.last
	snap := HealthSnapshot{Healthy: err == nil, CheckedAt: now}
	if err != nil {
		snap.Error = err.Error()
		snap.ConsecutiveFailures = prev.ConsecutiveFailures + 1
	}
	j.last = snap
	j.mu.Unlock()

	switch {
	case err != nil:
		j.log.Warn("store unhealthy", "error", err, "consecutive_failures", snap.ConsecutiveFailures)
	case prev.ConsecutiveFailures > 0:
		j.log.Info("store recovered", "after_failures", prev.ConsecutiveFailures)
	default:
		j.log.Debug("store healthy")
	}
	return nil
}

// Snapshot returns the last probe result. CheckedAt is zero before the
// first run.
func (j *HealthCheckJob) Snapshot() HealthSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}
