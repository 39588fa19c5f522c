package models

import "time"

// FinishReason is how a session ended.
type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishDiscarded FinishReason = "discarded"
	FinishSaved     FinishReason = "saved"
	FinishFailed    FinishReason = "failed"
)

// StepResult is the answer collected for one step.
type StepResult struct {
	StepIdentifier string    `json:"step_id"`
	Answer         string    `json:"answer,omitempty"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// TaskResult is the accumulated data set produced by one session. It
// may be partial when the session ended with a reason other than
// completed.
type TaskResult struct {
	RunID          string       `json:"run_id"`
	TaskIdentifier string       `json:"task_id"`
	Reason         FinishReason `json:"reason"`
	StartedAt      time.Time    `json:"started_at"`
	EndedAt        time.Time    `json:"ended_at,omitempty"`
	Steps          []StepResult `json:"steps"`
	// Err carries the opaque diagnostic detail when Reason is failed.
	Err string `json:"error,omitempty"`
}

// Clone returns an independent snapshot of the result.
func (r *TaskResult) Clone() *TaskResult {
	c := *r
	c.Steps = make([]StepResult, len(r.Steps))
	copy(c.Steps, r.Steps)
	return &c
}
