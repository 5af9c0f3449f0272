// Package wizard implements linear multi-step forms such as the
// professional profile setup and the job proposal flow.
//
// Steps are totally ordered. Next advances only when the current step
// validates; Back is never gated. A step can be entered directly when every
// earlier required step is complete or when it was already visited. Submit
// is only available on the last step.
package wizard

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every FieldErrors value.
	ErrValidation = errors.New("step validation failed")

	// ErrNotEnterable is returned by GoTo for a step that cannot be entered yet.
	ErrNotEnterable = errors.New("step not enterable")

	// ErrNotLastStep is returned by Submit before the last step is reached.
	ErrNotLastStep = errors.New("submit is only available on the last step")

	// ErrLastStep is returned by Next on the last step.
	ErrLastStep = errors.New("already on the last step")

	// ErrIncomplete is returned by Submit while a required step is incomplete.
	ErrIncomplete = errors.New("required step incomplete")

	// ErrSubmitted is returned once the wizard was submitted.
	ErrSubmitted = errors.New("wizard already submitted")
)

// Step is one page of a wizard.
type Step struct {
	Name     string
	Optional bool

	// Validate returns the inline field errors of the step, nil when valid.
	// A nil Validate always passes.
	Validate func() FieldErrors

	// Payload is the step's form data, a pointer saved with drafts.
	Payload any
}

// Wizard is the state machine of a multi-step form. It is not safe for
// concurrent use.
type Wizard struct {
	name      string
	steps     []Step
	current   int
	visited   []bool
	completed []bool
	submitted bool
}

// New creates a wizard positioned on the first step. name identifies the
// wizard's draft.
func New(name string, steps ...Step) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard %q has no steps", name)
	}
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("wizard %q: step name is required", name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("wizard %q: duplicate step %q", name, s.Name)
		}
		seen[s.Name] = true
	}

	w := &Wizard{
		name:      name,
		steps:     steps,
		visited:   make([]bool, len(steps)),
		completed: make([]bool, len(steps)),
	}
	w.visited[0] = true
	return w, nil
}

// Name returns the wizard name.
func (w *Wizard) Name() string { return w.name }

// Len returns the number of steps.
func (w *Wizard) Len() int { return len(w.steps) }

// Index returns the position of the current step.
func (w *Wizard) Index() int { return w.current }

// Current returns the current step.
func (w *Wizard) Current() Step { return w.steps[w.current] }

// Step returns the step at i.
func (w *Wizard) Step(i int) Step { return w.steps[i] }

// IsLast reports whether the current step is the last one.
func (w *Wizard) IsLast() bool { return w.current == len(w.steps)-1 }

// Completed reports whether step i passed validation.
func (w *Wizard) Completed(i int) bool {
	return i >= 0 && i < len(w.steps) && w.completed[i]
}

// Visited reports whether step i was shown.
func (w *Wizard) Visited(i int) bool {
	return i >= 0 && i < len(w.steps) && w.visited[i]
}

// Submitted reports whether Submit succeeded.
func (w *Wizard) Submitted() bool { return w.submitted }

// CanEnter reports whether step i may be shown: it is the current or an
// already visited step, or every earlier required step is complete.
func (w *Wizard) CanEnter(i int) bool {
	if i < 0 || i >= len(w.steps) {
		return false
	}
	if i == w.current || w.visited[i] {
		return true
	}
	for j := 0; j < i; j++ {
		if !w.steps[j].Optional && !w.completed[j] {
			return false
		}
	}
	return true
}

// GoTo moves to step i.
func (w *Wizard) GoTo(i int) error {
	if !w.CanEnter(i) {
		return fmt.Errorf("%w: %d", ErrNotEnterable, i)
	}
	w.current = i
	w.visited[i] = true
	return nil
}

// Next validates the current step and, when it passes, marks it complete and
// advances. Validation failures are returned as FieldErrors.
func (w *Wizard) Next() error {
	if w.IsLast() {
		return ErrLastStep
	}
	if err := w.validateCurrent(); err != nil {
		return err
	}
	w.current++
	w.visited[w.current] = true
	return nil
}

// Back moves to the previous step without validation. It reports false on
// the first step.
func (w *Wizard) Back() bool {
	if w.current == 0 {
		return false
	}
	w.current--
	return true
}

// Skip advances past an optional step without validating it.
func (w *Wizard) Skip() error {
	if w.IsLast() {
		return ErrLastStep
	}
	if !w.Current().Optional {
		return fmt.Errorf("step %q is required", w.Current().Name)
	}
	w.current++
	w.visited[w.current] = true
	return nil
}

// Submit validates the last step and checks every required step is
// complete.
func (w *Wizard) Submit() error {
	if w.submitted {
		return ErrSubmitted
	}
	if !w.IsLast() {
		return ErrNotLastStep
	}
	if err := w.validateCurrent(); err != nil {
		return err
	}
	for i, s := range w.steps {
		if !s.Optional && !w.completed[i] {
			return fmt.Errorf("%w: %s", ErrIncomplete, s.Name)
		}
	}
	w.submitted = true
	return nil
}

// Progress returns the current step index, the number of steps and the
// share of completed steps in percent.
func (w *Wizard) Progress() (current, total, percent int) {
	done := 0
	for _, c := range w.completed {
		if c {
			done++
		}
	}
	return w.current, len(w.steps), done * 100 / len(w.steps)
}

func (w *Wizard) validateCurrent() error {
	step := w.steps[w.current]
	if step.Validate != nil {
		if fe := step.Validate(); len(fe) > 0 {
			w.completed[w.current] = false
			return fe
		}
	}
	w.completed[w.current] = true
	return nil
}
