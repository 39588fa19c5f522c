package runner

import (
	"context"
	"sync"

	"github.com/taskdeck/taskdeck/internal/models"
)

// Scripted is a non-interactive presenter. Question steps are answered
// from a preloaded map, wait steps block until advanced, and a
// discard/save/failure can be injected at a specific step. It backs
// the CLI's --auto mode and the package tests.
type Scripted struct {
	// Answers maps step identifier to the answer for question steps.
	// Missing entries answer with the empty string.
	Answers map[string]string

	// DiscardAt, SaveAt and FailAt end the session at the named step.
	DiscardAt string
	SaveAt    string
	FailAt    string
	FailErr   error

	mu        sync.Mutex
	presented []string
}

func (p *Scripted) Present(ctx context.Context, step *models.Step, view *StepView) (StepOutcome, string, error) {
	p.mu.Lock()
	p.presented = append(p.presented, step.Identifier)
	p.mu.Unlock()

	switch {
	case p.FailAt != "" && step.Identifier == p.FailAt:
		return OutcomeContinue, "", p.FailErr
	case p.DiscardAt != "" && step.Identifier == p.DiscardAt:
		return OutcomeDiscard, "", nil
	case p.SaveAt != "" && step.Identifier == p.SaveAt:
		return OutcomeSave, "", nil
	}

	if step.IsWait() {
		select {
		case <-view.Advanced():
		case <-ctx.Done():
			return OutcomeDiscard, "", nil
		}
	}

	if step.Kind == models.StepKindQuestion {
		return OutcomeContinue, p.Answers[step.Identifier], nil
	}
	return OutcomeContinue, "", nil
}

// Presented returns the step identifiers in presentation order.
func (p *Scripted) Presented() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.presented...)
}
