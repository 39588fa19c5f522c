package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/taskdeck/taskdeck/internal/models"
)

// Console presents steps interactively on a terminal: instruction and
// question steps as huh forms, wait steps as a spinner or progress bar.
type Console struct {
	in  io.Reader
	out io.Writer
}

// NewConsole creates a console presenter reading from in and writing
// to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

func (c *Console) Present(ctx context.Context, step *models.Step, view *StepView) (StepOutcome, string, error) {
	switch step.Kind {
	case models.StepKindInstruction:
		return c.presentInstruction(step)
	case models.StepKindQuestion:
		return c.presentQuestion(step)
	case models.StepKindWaitIndeterminate, models.StepKindWaitDeterminate:
		return c.presentWait(ctx, step, view)
	case models.StepKindCompletion:
		c.printHeader(step)
		return OutcomeContinue, "", nil
	default:
		return OutcomeContinue, "", fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (c *Console) printHeader(step *models.Step) {
	fmt.Fprintf(c.out, "\n%s\n%s\n", step.Title, strings.Repeat("-", len(step.Title)))
	if step.Text != "" {
		fmt.Fprintln(c.out, renderMarkdown(step.Text))
	}
}

func (c *Console) presentInstruction(step *models.Step) (StepOutcome, string, error) {
	c.printHeader(step)

	next := true
	form := c.newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Continue?").
				Affirmative("Next").
				Negative("Save & exit").
				Value(&next),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return OutcomeDiscard, "", nil
		}
		return OutcomeContinue, "", fmt.Errorf("presenting instruction step: %w", err)
	}
	if !next {
		return OutcomeSave, "", nil
	}
	return OutcomeContinue, "", nil
}

func (c *Console) presentQuestion(step *models.Step) (StepOutcome, string, error) {
	params, err := step.QuestionParams()
	if err != nil {
		return OutcomeContinue, "", err
	}

	prompt := params.Prompt
	if prompt == "" {
		prompt = step.Title
	}

	var answer string
	var field huh.Field
	if len(params.Choices) > 0 {
		field = huh.NewSelect[string]().
			Title(prompt).
			Options(huh.NewOptions(params.Choices...)...).
			Value(&answer)
	} else {
		field = huh.NewInput().
			Title(prompt).
			Placeholder(params.Placeholder).
			Value(&answer).
			Validate(func(s string) error {
				if !params.Optional && strings.TrimSpace(s) == "" {
					return fmt.Errorf("an answer is required")
				}
				return nil
			})
	}

	form := c.newForm(huh.NewGroup(field))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return OutcomeDiscard, "", nil
		}
		return OutcomeContinue, "", fmt.Errorf("presenting question step %q: %w", step.Identifier, err)
	}
	return OutcomeContinue, answer, nil
}

// presentWait renders a spinner or progress bar and blocks until the
// step's view is advanced (by the wait progress driver) or the session
// context ends.
func (c *Console) presentWait(ctx context.Context, step *models.Step, view *StepView) (StepOutcome, string, error) {
	c.printHeader(step)

	var stop func()
	if step.Kind == models.StepKindWaitDeterminate {
		bar := newProgressBar(c.out, step.Title)
		view.OnProgress(bar.set)
		stop = bar.clear
	} else {
		stop = startSpinner(c.out, step.Title)
	}
	defer stop()

	select {
	case <-view.Advanced():
		return OutcomeContinue, "", nil
	case <-ctx.Done():
		return OutcomeDiscard, "", nil
	}
}

// newForm builds a huh form wired to the presenter's streams, using
// accessible mode when input is not a terminal (tests, piped input).
func (c *Console) newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).
		WithInput(c.in).
		WithOutput(c.out)

	if f, ok := c.in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}
