package models

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// StepKind identifies how a step is presented.
type StepKind string

const (
	StepKindInstruction       StepKind = "instruction"
	StepKindQuestion          StepKind = "question"
	StepKindWaitIndeterminate StepKind = "wait_indeterminate"
	StepKindWaitDeterminate   StepKind = "wait_determinate"
	StepKindCompletion        StepKind = "completion"
)

// Wait-step identifiers recognized by the progress driver. Tasks may
// override a wait step's identifier, but only these two get simulated
// progress.
const (
	WaitStepIndeterminateID = "WaitStepIndeterminate"
	WaitStepDeterminateID   = "WaitStepDeterminate"
)

// Step is one screen of interaction within a task.
type Step struct {
	Identifier string         `yaml:"id"`
	Kind       StepKind       `yaml:"kind"`
	Title      string         `yaml:"title"`
	Text       string         `yaml:"text,omitempty"`
	Params     map[string]any `yaml:"params,omitempty"`
}

// QuestionParams are the per-step settings for question steps,
// decoded from the step's free-form params map.
type QuestionParams struct {
	Prompt      string   `mapstructure:"prompt"`
	Choices     []string `mapstructure:"choices"`
	Placeholder string   `mapstructure:"placeholder"`
	Optional    bool     `mapstructure:"optional"`
}

// QuestionParams decodes the step's params. Only meaningful for
// question steps; other kinds return an empty value.
func (s *Step) QuestionParams() (QuestionParams, error) {
	var p QuestionParams
	if err := mapstructure.Decode(s.Params, &p); err != nil {
		return QuestionParams{}, fmt.Errorf("decoding params for step %q: %w", s.Identifier, err)
	}
	return p, nil
}

// IsWait reports whether the step represents simulated background work.
func (s *Step) IsWait() bool {
	return s.Kind == StepKindWaitIndeterminate || s.Kind == StepKindWaitDeterminate
}

// Task is an ordered sequence of steps presented to a participant.
type Task struct {
	Identifier  string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// LoadTask loads and validates a task from a YAML file.
func LoadTask(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("parsing task %s: %w", path, err)
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task %s: %w", path, err)
	}

	return &task, nil
}

var validKinds = map[StepKind]bool{
	StepKindInstruction:       true,
	StepKindQuestion:          true,
	StepKindWaitIndeterminate: true,
	StepKindWaitDeterminate:   true,
	StepKindCompletion:        true,
}

// Validate checks that the task is well formed. It also fills in the
// recognized wait-step identifiers for wait steps that omit one.
func (t *Task) Validate() error {
	if t.Identifier == "" {
		return fmt.Errorf("task id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("task %q has no steps", t.Identifier)
	}

	seen := map[string]bool{}
	for i := range t.Steps {
		s := &t.Steps[i]
		if !validKinds[s.Kind] {
			return fmt.Errorf("step %d: unknown kind %q", i, s.Kind)
		}
		if s.Identifier == "" {
			switch s.Kind {
			case StepKindWaitIndeterminate:
				s.Identifier = WaitStepIndeterminateID
			case StepKindWaitDeterminate:
				s.Identifier = WaitStepDeterminateID
			default:
				return fmt.Errorf("step %d: id is required", i)
			}
		}
		if seen[s.Identifier] {
			return fmt.Errorf("duplicate step id %q", s.Identifier)
		}
		seen[s.Identifier] = true
	}
	return nil
}

// Clone returns an independent copy, so every presentation gets its
// own Task instance.
func (t *Task) Clone() *Task {
	c := *t
	c.Steps = make([]Step, len(t.Steps))
	copy(c.Steps, t.Steps)
	for i := range c.Steps {
		if t.Steps[i].Params == nil {
			continue
		}
		p := make(map[string]any, len(t.Steps[i].Params))
		for k, v := range t.Steps[i].Params {
			p[k] = v
		}
		c.Steps[i].Params = p
	}
	return &c
}
