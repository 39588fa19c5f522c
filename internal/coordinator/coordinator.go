// Package coordinator orchestrates one task presentation from catalog
// selection to result delivery: it builds the task, opens a runner
// session, drives simulated progress for recognized wait steps, and
// hands the finished result to the registered callback before tearing
// the presentation down.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskdeck/taskdeck/internal/artifacts"
	"github.com/taskdeck/taskdeck/internal/catalog"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/runner"
	"github.com/taskdeck/taskdeck/internal/timing"
	"github.com/taskdeck/taskdeck/internal/waitstep"
)

// ResultCallback receives a session's result exactly once, before the
// presentation is dismissed. The result may be partial when the
// session ended with a reason other than completed.
type ResultCallback func(*models.TaskResult)

// Coordinator presents tasks and delivers their results.
type Coordinator struct {
	runner     *runner.Runner
	clock      timing.Clock
	outputRoot string
	logger     *slog.Logger
	sink       *artifacts.BlobSink

	mu       sync.Mutex
	callback ResultCallback
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithOutputRoot sets the directory session artifacts are written
// under. Each session gets a subdirectory named after its run ID.
func WithOutputRoot(dir string) Option {
	return func(c *Coordinator) {
		c.outputRoot = dir
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithBlobSink uploads each session's result JSON to blob storage.
// Upload failures are logged, never fatal.
func WithBlobSink(s *artifacts.BlobSink) Option {
	return func(c *Coordinator) {
		c.sink = s
	}
}

// New creates a coordinator. Wait-step timers are scheduled on clock.
func New(r *runner.Runner, clock timing.Clock, opts ...Option) *Coordinator {
	c := &Coordinator{
		runner:     r,
		clock:      clock,
		outputRoot: DefaultOutputRoot(),
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DefaultOutputRoot is where session artifacts go when no output root
// is configured.
func DefaultOutputRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "taskdeck-output"
	}
	return filepath.Join(home, "taskdeck")
}

// SetResultCallback registers the single result callback slot.
func (c *Coordinator) SetResultCallback(cb ResultCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
}

func (c *Coordinator) resultCallback() ResultCallback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callback
}

// PresentTask builds a task from the descriptor and opens a session
// for it. An empty runID gets a freshly generated one; run IDs are
// never reused across sessions. A descriptor whose factory produces no
// task violates the catalog contract and panics.
func (c *Coordinator) PresentTask(ctx context.Context, desc *catalog.Descriptor, runID string) (*runner.Session, error) {
	task := desc.Build()
	if task == nil {
		panic(fmt.Sprintf("task descriptor %q produced no task", desc.Label))
	}

	if runID == "" {
		runID = NewRunID(c.clock.Now())
	}
	outputDir := filepath.Join(c.outputRoot, runID)

	sd := &sessionDelegate{
		c:      c,
		driver: waitstep.NewDriver(c.clock),
	}

	sess, err := c.runner.Open(ctx, task, runID, outputDir, sd)
	if err != nil {
		return nil, fmt.Errorf("opening session for %q: %w", task.Identifier, err)
	}
	return sess, nil
}

// sessionDelegate ties one session to its own wait progress driver, so
// independent sessions never share timer state.
type sessionDelegate struct {
	c      *Coordinator
	driver *waitstep.Driver
	once   sync.Once
}

// StepWillAppear hands recognized wait steps to the driver. Everything
// else proceeds under the runner's own pacing. The driver only
// schedules here, so the callback never blocks the session.
func (d *sessionDelegate) StepWillAppear(s *runner.Session, step *models.Step) {
	if !waitstep.Recognizes(step.Identifier) {
		return
	}
	view := s.CurrentView()
	if view == nil {
		return
	}
	d.driver.StepWillAppear(step.Identifier, view)
}

// Finished stops any live wait timer, delivers the result to the
// registered callback, and only then dismisses the presentation.
func (d *sessionDelegate) Finished(s *runner.Session, reason models.FinishReason, err error) {
	d.once.Do(func() {
		d.driver.Stop()

		result := s.Result()
		if cb := d.c.resultCallback(); cb != nil {
			cb(result)
		}

		s.Dismiss()
		d.c.persistResult(s, result)
	})
}

// persistResult writes result.json into the session's output directory
// and uploads it when a blob sink is configured.
func (c *Coordinator) persistResult(s *runner.Session, result *models.TaskResult) {
	path, err := artifacts.WriteResult(s.OutputDir(), result)
	if err != nil {
		c.logger.Warn("writing session result", "run_id", s.RunID(), "error", err)
		return
	}
	c.logger.Info("session result written", "run_id", s.RunID(), "path", path)

	if c.sink == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("encoding session result for upload", "run_id", s.RunID(), "error", err)
		return
	}
	if err := c.sink.Upload(context.Background(), s.RunID(), artifacts.ResultName, data); err != nil {
		c.logger.Warn("uploading session result", "run_id", s.RunID(), "error", err)
	}
}
