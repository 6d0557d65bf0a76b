package simulation

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultRunDuration is how long a simulation stays running.
const DefaultRunDuration = 3 * time.Second

// State is the lifecycle of a run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Run describes the current simulation.
type Run struct {
	State       State     `json:"state"`
	Scenario    *Scenario `json:"scenario,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitzero"`
	CompletesAt time.Time `json:"completesAt,omitzero"`
}

// Runner tracks one run. A run completes once its duration has elapsed; the
// state is derived from the clock when read, so no timer goroutine is needed.
type Runner struct {
	mu        sync.Mutex
	catalogue *Catalogue
	duration  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	scenario  *Scenario
	startedAt time.Time
}

// NewRunner creates an idle runner. A duration of zero or less uses DefaultRunDuration.
func NewRunner(c *Catalogue, duration time.Duration, logger *slog.Logger) *Runner {
	if duration <= 0 {
		duration = DefaultRunDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{catalogue: c, duration: duration, now: time.Now, logger: logger}
}

// Start begins a run of scenario id, replacing any current run.
func (r *Runner) Start(id string) (Run, error) {
	s, err := r.catalogue.Get(id)
	if err != nil {
		return Run{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenario = &s
	r.startedAt = r.now()
	r.logger.Info("Simulation started.", "scenario", id, "duration", r.duration.String())
	return r.statusLocked(), nil
}

// Status returns the current run.
func (r *Runner) Status() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

// Reset returns the runner to idle.
func (r *Runner) Reset() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenario = nil
	r.startedAt = time.Time{}
	return r.statusLocked()
}

func (r *Runner) statusLocked() Run {
	if r.scenario == nil {
		return Run{State: StateIdle}
	}
	s := *r.scenario
	run := Run{
		State:       StateRunning,
		Scenario:    &s,
		StartedAt:   r.startedAt,
		CompletesAt: r.startedAt.Add(r.duration),
	}
	if !r.now().Before(run.CompletesAt) {
		run.State = StateCompleted
	}
	return run
}
