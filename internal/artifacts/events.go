// Package artifacts writes a session's output files: an NDJSON event
// log, the final result JSON, and an optional compressed archive or
// blob upload.
package artifacts

import "time"

// EventType identifies the kind of session event.
type EventType string

const (
	EventSessionStart    EventType = "session_start"
	EventStepAppear      EventType = "step_appear"
	EventProgress        EventType = "progress"
	EventStepComplete    EventType = "step_complete"
	EventSessionFinished EventType = "session_finished"
)

// Event is a single timestamped entry in a session log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// StepAppearData returns event data for a step about to be shown.
func StepAppearData(stepID string, kind string, index int) map[string]any {
	return map[string]any{
		"step_id": stepID,
		"kind":    kind,
		"index":   index,
	}
}

// ProgressData returns event data for a progress report.
func ProgressData(stepID string, fraction float64) map[string]any {
	return map[string]any{
		"step_id":  stepID,
		"fraction": fraction,
	}
}

// StepCompleteData returns event data for a completed step.
func StepCompleteData(stepID string, answered bool) map[string]any {
	return map[string]any{
		"step_id":  stepID,
		"answered": answered,
	}
}

// SessionFinishedData returns event data for the end of a session.
func SessionFinishedData(reason string, errMsg string) map[string]any {
	d := map[string]any{
		"reason": reason,
	}
	if errMsg != "" {
		d["error"] = errMsg
	}
	return d
}
