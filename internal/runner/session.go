package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/artifacts"
	"github.com/taskdeck/taskdeck/internal/models"
)

func nowUTC() time.Time { return time.Now().UTC() }

// Session is one live presentation of a single task.
type Session struct {
	task      *models.Task
	runID     string
	outputDir string
	delegate  Delegate
	presenter Presenter
	log       *artifacts.EventLog
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc

	mu        sync.Mutex
	result    *models.TaskResult
	front     *StepView
	finished  bool
	dismissed bool

	done chan struct{}
}

// RunID returns the session's run identifier.
func (s *Session) RunID() string { return s.runID }

// OutputDir returns the directory the session writes artifacts to.
func (s *Session) OutputDir() string { return s.outputDir }

// Task returns the task being presented.
func (s *Session) Task() *models.Task { return s.task }

// Result returns a snapshot of the accumulated result. Before the
// session finishes the reason field is empty and the data is partial.
func (s *Session) Result() *models.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.Clone()
}

// CurrentView returns the frontmost step's view, or nil when no step
// is being presented.
func (s *Session) CurrentView() *StepView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.front
}

// Done is closed once the session has finished and its delegate has
// been notified.
func (s *Session) Done() <-chan struct{} { return s.done }

// run walks the task's steps in order. StepWillAppear for step N+1 is
// never emitted before step N's presentation returned, which for wait
// steps means after their view was advanced.
func (s *Session) run() {
	for i := range s.task.Steps {
		step := &s.task.Steps[i]

		view := &StepView{session: s, step: step, advanced: make(chan struct{})}
		s.mu.Lock()
		s.front = view
		s.mu.Unlock()

		s.logEvent(artifacts.EventStepAppear, artifacts.StepAppearData(step.Identifier, string(step.Kind), i))
		s.delegate.StepWillAppear(s, step)

		outcome, answer, err := s.presenter.Present(s.ctx, step, view)

		s.mu.Lock()
		if s.front == view {
			s.front = nil
		}
		answered := step.Kind == models.StepKindQuestion && err == nil
		if answered {
			s.result.Steps = append(s.result.Steps, models.StepResult{
				StepIdentifier: step.Identifier,
				Answer:         answer,
				AnsweredAt:     nowUTC(),
			})
		}
		s.mu.Unlock()

		if err != nil {
			s.finish(models.FinishFailed, err)
			return
		}

		s.logEvent(artifacts.EventStepComplete, artifacts.StepCompleteData(step.Identifier, answered))

		switch outcome {
		case OutcomeDiscard:
			s.finish(models.FinishDiscarded, nil)
			return
		case OutcomeSave:
			s.finish(models.FinishSaved, nil)
			return
		}
	}

	s.finish(models.FinishCompleted, nil)
}

// finish records the reason, notifies the delegate exactly once, and
// releases anyone waiting on Done.
func (s *Session) finish(reason models.FinishReason, err error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.front = nil
	s.result.Reason = reason
	s.result.EndedAt = nowUTC()
	if err != nil {
		s.result.Err = err.Error()
	}
	s.mu.Unlock()

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	s.logEvent(artifacts.EventSessionFinished, artifacts.SessionFinishedData(string(reason), errMsg))
	s.logger.Info("session finished", "run_id", s.runID, "reason", reason)

	s.delegate.Finished(s, reason, err)
	close(s.done)
}

// Dismiss tears the presentation down: it cancels any in-flight step
// rendering, closes the event log, and compresses it. Called by the
// coordinator after the result callback has run.
func (s *Session) Dismiss() {
	s.mu.Lock()
	if s.dismissed {
		s.mu.Unlock()
		return
	}
	s.dismissed = true
	s.mu.Unlock()

	s.cancel()
	if err := s.log.Close(); err != nil {
		s.logger.Warn("closing session event log", "run_id", s.runID, "error", err)
	}
	if _, err := artifacts.CompressEventLog(s.outputDir); err != nil {
		s.logger.Warn("compressing session event log", "run_id", s.runID, "error", err)
	}
}

func (s *Session) logEvent(t artifacts.EventType, data map[string]any) {
	if err := s.log.Log(artifacts.NewEvent(t, data)); err != nil {
		s.logger.Warn("writing session event", "run_id", s.runID, "error", err)
	}
}

// StepView is the displayed surface of the frontmost step. Advance and
// SetProgress become no-ops once the step is no longer active, so a
// stale timer firing after the session moved on is an ignorable race.
type StepView struct {
	session *Session
	step    *models.Step

	once     sync.Once
	advanced chan struct{}

	mu         sync.Mutex
	progressFn func(fraction float64, animated bool)
}

// Step returns the step this view displays.
func (v *StepView) Step() *models.Step { return v.step }

// Advance moves the session past this step. No-op unless the step is
// the active frontmost step of a live session.
func (v *StepView) Advance() {
	s := v.session
	s.mu.Lock()
	active := s.front == v && !s.finished
	s.mu.Unlock()
	if !active {
		return
	}
	v.once.Do(func() { close(v.advanced) })
}

// Advanced is closed when the step has been advanced.
func (v *StepView) Advanced() <-chan struct{} { return v.advanced }

// SetProgress reports a determinate wait step's fraction to the
// display and the event log. No-op once the step is no longer active.
func (v *StepView) SetProgress(fraction float64, animated bool) {
	s := v.session
	s.mu.Lock()
	active := s.front == v && !s.finished
	s.mu.Unlock()
	if !active {
		return
	}

	s.logEvent(artifacts.EventProgress, artifacts.ProgressData(v.step.Identifier, fraction))

	v.mu.Lock()
	fn := v.progressFn
	v.mu.Unlock()
	if fn != nil {
		fn(fraction, animated)
	}
}

// OnProgress installs the presenter's progress renderer.
func (v *StepView) OnProgress(fn func(fraction float64, animated bool)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.progressFn = fn
}
