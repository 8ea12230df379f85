package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// ErrUnknownJob is returned by Trigger for names that were never registered.
var ErrUnknownJob = errors.New("unknown job")

// JobStatus is the observable state of one registered job.
type JobStatus struct {
	Name          string        `json:"name"`
	Cadence       string        `json:"cadence"`
	Running       bool          `json:"running"`
	LastRunAt     time.Time     `json:"last_run_at"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastDuration  time.Duration `json:"last_duration"`
	LastError     string        `json:"last_error,omitempty"`
	Runs          int64         `json:"runs"`
	Failures      int64         `json:"failures"`
	Skipped       int64         `json:"skipped"`
	NextRunAt     time.Time     `json:"next_run_at"`
}

// RunResult is the outcome of a single activation.
type RunResult struct {
	Job        string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
	Panicked   bool
	// Skipped is set when the activation was dropped because the previous
	// run of the same job had not finished.
	Skipped bool
}

func (r RunResult) Failed() bool { return r.Err != nil }

type registeredJob struct {
	name    string
	cadence Cadence
	fn      JobFunc
	entryID cron.EntryID
	running atomic.Bool
	status  JobStatus
}

// Scheduler fires named jobs on their cadences. A job never overlaps with
// itself, and a failing or panicking job is recorded and fires again on its
// next tick.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	log  *slog.Logger
	now  func() time.Time

	mu      sync.RWMutex
	jobs    map[string]*registeredJob
	started bool
}

func NewScheduler(loc *time.Location, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		loc:  loc,
		log:  log,
		now:  time.Now,
		jobs: make(map[string]*registeredJob),
	}
}

// Register adds a job. Names are unique; the cadence is evaluated in the
// scheduler's location unless it carries its own.
func (s *Scheduler) Register(name string, cadence Cadence, fn JobFunc) error {
	if name == "" {
		return fmt.Errorf("register job: name is required")
	}
	if fn == nil {
		return fmt.Errorf("register job %q: nil function", name)
	}
	if cadence.Location == nil {
		cadence = cadence.In(s.loc)
	}
	if err := cadence.Validate(); err != nil {
		return fmt.Errorf("register job %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("register job %q: already registered", name)
	}

	j := &registeredJob{
		name:    name,
		cadence: cadence,
		fn:      fn,
		status:  JobStatus{Name: name, Cadence: cadence.String()},
	}
	j.entryID = s.cron.Schedule(cadence, cron.FuncJob(func() {
		s.run(context.Background(), j)
	}))
	s.jobs[name] = j

	s.log.Info("job registered", "job", name, "cadence", cadence.String())
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop stops issuing ticks at once and waits up to grace for runs already
// in flight. It reports whether they all finished in time; runs that did
// not keep going in the background.
func (s *Scheduler) Stop(grace time.Duration) bool {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return true
	}
	s.started = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return true
	case <-time.After(grace):
		s.log.Warn("scheduler stopped with jobs still running", "grace", grace, "running", s.runningJobs())
		return false
	}
}

// Trigger runs a job immediately on the caller's goroutine, subject to the
// same no-overlap rule as scheduled ticks.
func (s *Scheduler) Trigger(ctx context.Context, name string) (RunResult, error) {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return RunResult{}, fmt.Errorf("trigger %q: %w", name, ErrUnknownJob)
	}
	return s.run(ctx, j), nil
}

// Status returns a snapshot of every registered job keyed by name.
func (s *Scheduler) Status() map[string]JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	next := make(map[cron.EntryID]time.Time, len(s.jobs))
	if s.started {
		for _, e := range s.cron.Entries() {
			next[e.ID] = e.Next
		}
	}

	out := make(map[string]JobStatus, len(s.jobs))
	for name, j := range s.jobs {
		st := j.status
		st.NextRunAt = next[j.entryID]
		out[name] = st
	}
	return out
}

// Names lists registered jobs in alphabetical order.
func (s *Scheduler) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) run(ctx context.Context, j *registeredJob) RunResult {
	if !j.running.CompareAndSwap(false, true) {
		s.mu.Lock()
		j.status.Skipped++
		s.mu.Unlock()
		s.log.Warn("skipping tick, previous run still in progress", "job", j.name)
		return RunResult{Job: j.name, Skipped: true}
	}
	defer j.running.Store(false)

	start := s.now()
	s.mu.Lock()
	j.status.Running = true
	j.status.LastRunAt = start
	s.mu.Unlock()

	s.log.Info("job started", "job", j.name)
	panicked, err := s.execute(ctx, j)
	res := RunResult{Job: j.name, StartedAt: start, FinishedAt: s.now(), Err: err, Panicked: panicked}
	s.record(j, res)
	return res
}

func (s *Scheduler) execute(ctx context.Context, j *registeredJob) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked", "job", j.name, "panic", r, "stack", string(debug.Stack()))
			panicked, err = true, fmt.Errorf("panic: %v", r)
		}
	}()
	return false, j.fn(ctx)
}

func (s *Scheduler) record(j *registeredJob, res RunResult) {
	elapsed := res.FinishedAt.Sub(res.StartedAt)

	s.mu.Lock()
	j.status.Running = false
	j.status.Runs++
	j.status.LastDuration = elapsed
	if res.Failed() {
		j.status.Failures++
		j.status.LastError = res.Err.Error()
	} else {
		j.status.LastError = ""
		j.status.LastSuccessAt = res.FinishedAt
	}
	s.mu.Unlock()

	if res.Failed() {
		s.log.Error("job failed", "job", j.name, "at", res.FinishedAt, "duration", elapsed, "error", res.Err)
		return
	}
	s.log.Info("job finished", "job", j.name, "duration", elapsed)
}

func (s *Scheduler) runningJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name, j := range s.jobs {
		if j.status.Running {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// cronLogger routes robfig/cron's internal logging into slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
