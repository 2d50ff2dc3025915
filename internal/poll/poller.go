// Package poll implements the bounded, cancellable polling engine shared by
// the generation and image jobs.
package poll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"github.com/rs/zerolog"

	"socialflow/internal/domain"
	"socialflow/internal/infra"
)

// State enumerates the engine's lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
	StateAborted    State = "aborted"
)

// Terminal reports whether the engine stops in this state.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateAborted:
		return true
	}
	return false
}

// Update is one poll response, reduced to what the engine needs: the job
// status and a deferred apply step that merges any fragments the response
// carried. Apply is only invoked while the run is still live; after
// cancellation it is never called, even for a response already in hand.
type Update struct {
	Status      domain.JobStatus
	ErrorDetail string
	Apply       func()
}

// Driver starts a job and fetches its status. Implementations adapt one
// backend job resource (generation or image) to the engine.
type Driver interface {
	Start(ctx context.Context) (taskID string, err error)
	Poll(ctx context.Context, taskID string) (Update, error)
}

// Config tunes one run. Zero values fall back to the service defaults
// (2s interval, 60 polls, 5 consecutive errors).
type Config struct {
	Interval             time.Duration
	MaxPolls             int
	MaxConsecutiveErrors int
	Logger               *infra.Logger
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = 60
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = 5
	}
	if c.Logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		c.Logger = &l
	}
	return c
}

// Result is the terminal outcome of a run.
type Result struct {
	State  State
	TaskID string
	Polls  int
	Err    error
}

// Run drives a job to a terminal state. It blocks until completion, failure,
// timeout, abort, or context cancellation. Requests are never pipelined: each
// tick issues at most one status query, so responses apply in issue order.
func Run(ctx context.Context, cfg Config, driver Driver) Result {
	cfg = cfg.withDefaults()

	if err := ctx.Err(); err != nil {
		return Result{State: StateAborted, Err: err}
	}

	taskID, err := driver.Start(ctx)
	if err != nil {
		// Submission failure is terminal; polling is never attempted.
		return Result{State: StateFailed, Err: err}
	}
	cfg.Logger.Debug().Str("task_id", taskID).Msg("poll: job submitted")

	// A light jitter keeps many concurrent sessions from phase-locking their
	// queries; it is far below the interval, so tick order is issue order.
	ticker := jitterbug.New(cfg.Interval, &jitterbug.Norm{Stdev: 25 * time.Millisecond})
	defer ticker.Stop()

	consecutiveErrors := 0
	polls := 0

	for polls < cfg.MaxPolls {
		select {
		case <-ctx.Done():
			return Result{State: StateAborted, TaskID: taskID, Polls: polls, Err: ctx.Err()}
		case <-ticker.C:
		}

		update, err := driver.Poll(ctx, taskID)
		polls++

		if err != nil {
			if ctx.Err() != nil {
				return Result{State: StateAborted, TaskID: taskID, Polls: polls, Err: ctx.Err()}
			}
			consecutiveErrors++
			cfg.Logger.Warn().Err(err).
				Str("task_id", taskID).
				Int("consecutive", consecutiveErrors).
				Msg("poll: status query failed")
			if consecutiveErrors >= cfg.MaxConsecutiveErrors {
				return Result{
					State:  StateAborted,
					TaskID: taskID,
					Polls:  polls,
					Err:    fmt.Errorf("%w: %d consecutive query failures", domain.ErrNetworkAborted, consecutiveErrors),
				}
			}
			continue
		}
		consecutiveErrors = 0

		// Cancellation wins over a response already in hand: nothing is
		// applied once the caller has aborted.
		if ctx.Err() != nil {
			return Result{State: StateAborted, TaskID: taskID, Polls: polls, Err: ctx.Err()}
		}
		if update.Apply != nil {
			update.Apply()
		}

		switch update.Status {
		case domain.JobStatusCompleted:
			return Result{State: StateCompleted, TaskID: taskID, Polls: polls}
		case domain.JobStatusFailed:
			err := domain.ErrGenerationFailed
			if update.ErrorDetail != "" {
				return Result{State: StateFailed, TaskID: taskID, Polls: polls,
					Err: fmt.Errorf("%w: %s", err, update.ErrorDetail)}
			}
			return Result{State: StateFailed, TaskID: taskID, Polls: polls, Err: err}
		}
	}

	return Result{
		State:  StateTimedOut,
		TaskID: taskID,
		Polls:  polls,
		Err:    fmt.Errorf("%w after %d polls", domain.ErrGenerationTimedOut, polls),
	}
}

// Cancelled reports whether a result ended because the caller aborted rather
// than because of repeated network errors.
func (r Result) Cancelled() bool {
	return r.State == StateAborted && r.Err != nil && !errors.Is(r.Err, domain.ErrNetworkAborted)
}
