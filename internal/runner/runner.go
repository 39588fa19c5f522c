// Package runner drives a participant through a task's steps. It is
// the presentation collaborator: it renders each step, reports
// step-transition and completion events to a delegate, and accumulates
// the session's result.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskdeck/taskdeck/internal/artifacts"
	"github.com/taskdeck/taskdeck/internal/models"
)

// StepOutcome is how the participant left a step.
type StepOutcome int

const (
	// OutcomeContinue moves on to the next step.
	OutcomeContinue StepOutcome = iota
	// OutcomeSave ends the session keeping the partial result.
	OutcomeSave
	// OutcomeDiscard ends the session abandoning the result.
	OutcomeDiscard
)

// Delegate receives session lifecycle callbacks. StepWillAppear fires
// immediately before each step is displayed; Finished fires exactly
// once when the session ends.
type Delegate interface {
	StepWillAppear(s *Session, step *models.Step)
	Finished(s *Session, reason models.FinishReason, err error)
}

// Presenter renders one step and reports how the participant left it.
// For question steps the returned string is the collected answer. For
// wait steps the presenter blocks until the step's view is advanced.
type Presenter interface {
	Present(ctx context.Context, step *models.Step, view *StepView) (StepOutcome, string, error)
}

// Runner opens task sessions.
type Runner struct {
	presenter Presenter
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger used for session diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a runner that presents steps with the given presenter.
func New(presenter Presenter, opts ...Option) *Runner {
	r := &Runner{
		presenter: presenter,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Open starts a session for the task, writing artifacts under
// outputDir, and returns once the presentation is underway. Delegate
// callbacks are delivered from the session's own goroutine.
func (r *Runner) Open(ctx context.Context, task *models.Task, runID, outputDir string, delegate Delegate) (*Session, error) {
	if task == nil || len(task.Steps) == 0 {
		return nil, fmt.Errorf("task has no steps")
	}
	if delegate == nil {
		return nil, fmt.Errorf("delegate is required")
	}

	log, err := artifacts.NewEventLog(outputDir)
	if err != nil {
		return nil, err
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		task:      task,
		runID:     runID,
		outputDir: outputDir,
		delegate:  delegate,
		presenter: r.presenter,
		log:       log,
		logger:    r.logger,
		ctx:       sctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		result: &models.TaskResult{
			RunID:          runID,
			TaskIdentifier: task.Identifier,
			StartedAt:      nowUTC(),
		},
	}

	s.logEvent(artifacts.EventSessionStart, map[string]any{
		"run_id":  runID,
		"task_id": task.Identifier,
		"steps":   len(task.Steps),
	})
	r.logger.Info("session opened", "run_id", runID, "task", task.Identifier)

	go s.run()
	return s, nil
}
