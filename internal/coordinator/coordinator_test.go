package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/artifacts"
	"github.com/taskdeck/taskdeck/internal/catalog"
	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/runner"
	"github.com/taskdeck/taskdeck/internal/timing"
)

func waitTask(kind models.StepKind, id string) *models.Task {
	return &models.Task{
		Identifier: "wait-demo",
		Title:      "Wait demo",
		Steps: []models.Step{
			{Identifier: "intro", Kind: models.StepKindInstruction, Title: "Intro"},
			{Identifier: id, Kind: kind, Title: "Working"},
			{Identifier: "outro", Kind: models.StepKindCompletion, Title: "Done"},
		},
	}
}

func questionTask() *models.Task {
	return &models.Task{
		Identifier: "q-demo",
		Title:      "Question demo",
		Steps: []models.Step{
			{Identifier: "q1", Kind: models.StepKindQuestion, Title: "Name?"},
			{Identifier: "q2", Kind: models.StepKindQuestion, Title: "Color?"},
		},
	}
}

// countingCallback records every result delivery.
type countingCallback struct {
	mu      sync.Mutex
	results []*models.TaskResult
	during  []func()
}

func (c *countingCallback) fn(r *models.TaskResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
	for _, f := range c.during {
		f()
	}
}

func (c *countingCallback) snapshot() []*models.TaskResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.TaskResult(nil), c.results...)
}

func newTestCoordinator(t *testing.T, presenter runner.Presenter, clock timing.Clock) (*Coordinator, *countingCallback) {
	t.Helper()
	cb := &countingCallback{}
	coord := New(runner.New(presenter), clock, WithOutputRoot(t.TempDir()))
	coord.SetResultCallback(cb.fn)
	return coord, cb
}

func waitPending(t *testing.T, clock *timing.Manual) {
	t.Helper()
	require.Eventually(t, func() bool { return clock.Pending() > 0 },
		2*time.Second, time.Millisecond, "driver never scheduled a timer")
}

func waitDone(t *testing.T, s *runner.Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
	}
}

func sessionDone(s *runner.Session) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}

func TestIndeterminateWait_AdvancesAtExactlyFiveSeconds(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	coord, cb := newTestCoordinator(t, &runner.Scripted{}, clock)

	desc := catalog.NewDescriptor("Wait demo", waitTask(models.StepKindWaitIndeterminate, models.WaitStepIndeterminateID))
	sess, err := coord.PresentTask(context.Background(), desc, "")
	require.NoError(t, err)

	waitPending(t, clock)

	clock.Advance(4999 * time.Millisecond)
	assert.False(t, sessionDone(sess), "advance must not fire before 5s")

	clock.Advance(1 * time.Millisecond)
	waitDone(t, sess)

	results := cb.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, models.FinishCompleted, results[0].Reason)
}

func TestDeterminateWait_RunsToCompletion(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	coord, cb := newTestCoordinator(t, &runner.Scripted{}, clock)

	desc := catalog.NewDescriptor("Wait demo", waitTask(models.StepKindWaitDeterminate, models.WaitStepDeterminateID))
	sess, err := coord.PresentTask(context.Background(), desc, "")
	require.NoError(t, err)

	waitPending(t, clock)

	// 1.0s delay plus 100 ticks of 0.1s.
	clock.Advance(10999 * time.Millisecond)
	assert.False(t, sessionDone(sess))

	clock.Advance(1 * time.Millisecond)
	waitDone(t, sess)

	require.Len(t, cb.snapshot(), 1)

	// The compressed event log holds the progress reports.
	events := readCompressedLog(t, sess.OutputDir())
	progress := 0
	for _, e := range events {
		if e.Type == artifacts.EventProgress {
			progress++
		}
	}
	assert.Equal(t, 100, progress)
}

func TestCallback_ExactlyOncePerReason(t *testing.T) {
	tests := []struct {
		name      string
		presenter *runner.Scripted
		want      models.FinishReason
	}{
		{"completed", &runner.Scripted{}, models.FinishCompleted},
		{"discarded", &runner.Scripted{DiscardAt: "q2"}, models.FinishDiscarded},
		{"saved", &runner.Scripted{SaveAt: "q2"}, models.FinishSaved},
		{"failed", &runner.Scripted{FailAt: "q2", FailErr: errors.New("boom")}, models.FinishFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := timing.NewManual(time.Unix(0, 0))
			coord, cb := newTestCoordinator(t, tt.presenter, clock)

			desc := catalog.NewDescriptor("Question demo", questionTask())
			sess, err := coord.PresentTask(context.Background(), desc, "")
			require.NoError(t, err)
			waitDone(t, sess)

			results := cb.snapshot()
			require.Len(t, results, 1, "callback must fire exactly once")
			assert.Equal(t, tt.want, results[0].Reason)

			if tt.want == models.FinishFailed {
				assert.Equal(t, "boom", results[0].Err)
			}
			if tt.want == models.FinishDiscarded {
				// Partial result: q1 was answered before the discard.
				require.Len(t, results[0].Steps, 1)
				assert.Equal(t, "q1", results[0].Steps[0].StepIdentifier)
			}
		})
	}
}

func TestCallback_RunsBeforeDismissal(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	cb := &countingCallback{}
	coord := New(runner.New(&runner.Scripted{}), clock, WithOutputRoot(t.TempDir()))

	var logExisted, archiveExisted bool
	var outputDir string
	cb.during = append(cb.during, func() {
		_, err := os.Stat(filepath.Join(outputDir, artifacts.EventLogName))
		logExisted = err == nil
		_, err = os.Stat(filepath.Join(outputDir, artifacts.EventLogName+".zst"))
		archiveExisted = err == nil
	})
	coord.SetResultCallback(cb.fn)

	desc := catalog.NewDescriptor("Question demo", questionTask())
	sess, err := coord.PresentTask(context.Background(), desc, "")
	require.NoError(t, err)
	outputDir = sess.OutputDir()
	waitDone(t, sess)

	assert.True(t, logExisted, "callback must run before the presentation is torn down")
	assert.False(t, archiveExisted)

	// After dismissal the log is archived and the result persisted.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outputDir, artifacts.EventLogName+".zst"))
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	_, err = os.Stat(filepath.Join(outputDir, artifacts.ResultName))
	assert.NoError(t, err)
}

func TestEarlyFinish_InvalidatesPendingWaitTimer(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	presenter := &runner.Scripted{DiscardAt: models.WaitStepIndeterminateID}
	coord, cb := newTestCoordinator(t, presenter, clock)

	desc := catalog.NewDescriptor("Wait demo", waitTask(models.StepKindWaitIndeterminate, models.WaitStepIndeterminateID))
	sess, err := coord.PresentTask(context.Background(), desc, "")
	require.NoError(t, err)
	waitDone(t, sess)

	// The 5s advance timer was scheduled when the wait step appeared;
	// finishing the session must have cancelled it.
	assert.Zero(t, clock.Pending(), "wait timer leaked past session end")
	clock.Advance(time.Minute)

	results := cb.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, models.FinishDiscarded, results[0].Reason)
}

func TestUnrecognizedWaitIdentifier_NoTimerScheduled(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	task := &models.Task{
		Identifier: "plain",
		Title:      "Plain",
		Steps: []models.Step{
			{Identifier: "intro", Kind: models.StepKindInstruction, Title: "Intro"},
			{Identifier: "outro", Kind: models.StepKindCompletion, Title: "Done"},
		},
	}
	coord, cb := newTestCoordinator(t, &runner.Scripted{}, clock)

	sess, err := coord.PresentTask(context.Background(), catalog.NewDescriptor("Plain", task), "")
	require.NoError(t, err)
	waitDone(t, sess)

	assert.Zero(t, clock.Pending())
	assert.Len(t, cb.snapshot(), 1)
}

func TestRunIDs_NeverReused(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	coord, _ := newTestCoordinator(t, &runner.Scripted{}, clock)
	desc := catalog.NewDescriptor("Question demo", questionTask())

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		sess, err := coord.PresentTask(context.Background(), desc, "")
		require.NoError(t, err)
		waitDone(t, sess)
		assert.False(t, seen[sess.RunID()], "run ID %s reused", sess.RunID())
		seen[sess.RunID()] = true
	}
}

func TestPresentTask_CallerSuppliedRunID(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	coord, _ := newTestCoordinator(t, &runner.Scripted{}, clock)

	sess, err := coord.PresentTask(context.Background(), catalog.NewDescriptor("Question demo", questionTask()), "my-run")
	require.NoError(t, err)
	waitDone(t, sess)

	assert.Equal(t, "my-run", sess.RunID())
	assert.Equal(t, filepath.Base(sess.OutputDir()), "my-run")
}

func TestPresentTask_PanicsWhenFactoryProducesNothing(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	coord, _ := newTestCoordinator(t, &runner.Scripted{}, clock)

	desc := catalog.NewDescriptorFunc("broken", "broken", func() *models.Task { return nil })
	assert.Panics(t, func() {
		_, _ = coord.PresentTask(context.Background(), desc, "")
	})
}

func TestNewRunID_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewRunID(now)
	assert.Regexp(t, `^20260314-092653-[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, NewRunID(now))
}

// readCompressedLog decompresses and parses the archived event log.
func readCompressedLog(t *testing.T, dir string) []artifacts.Event {
	t.Helper()

	var f *os.File
	require.Eventually(t, func() bool {
		var err error
		f, err = os.Open(filepath.Join(dir, artifacts.EventLogName+".zst"))
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	return decodeEvents(t, data)
}

func decodeEvents(t *testing.T, data []byte) []artifacts.Event {
	t.Helper()
	var events []artifacts.Event
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var e artifacts.Event
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		events = append(events, e)
	}
	return events
}
