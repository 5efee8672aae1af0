// Package wizard drives the six-step profile completion flow: step gates,
// navigation and the explicit confirm-then-submit transition.
package wizard

import (
	"context"
	"sync"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/models"
	"supplier-portal/internal/submission"
)

var (
	// ErrSubmitNotConfirmed is returned by Submit without a prior Confirm on
	// the current step.
	ErrSubmitNotConfirmed = apperrors.NewSubmitNotConfirmedError()

	ErrNotFinalStep     = apperrors.NewNotFinalStepError()
	ErrAlreadySubmitted = apperrors.NewAlreadySubmittedError()
)

type State int

const (
	StateEditing State = iota
	StateConfirmed
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateConfirmed:
		return "confirmed"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "editing"
	}
}

// Change is one field-level update to the draft.
type Change func(*models.ProfileFormData)

// Submitter runs the submission pipeline.
type Submitter interface {
	Submit(ctx context.Context, form *models.ProfileFormData) (*submission.Outcome, error)
}

type Option func(*Wizard)

// WithOnNavigate registers the side effect run after every navigation, the
// scroll-to-top of a page.
func WithOnNavigate(fn func(step int)) Option {
	return func(w *Wizard) { w.onNavigate = fn }
}

func WithLogger(l logger.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

type Wizard struct {
	mu         sync.Mutex
	form       *models.ProfileFormData
	step       int
	state      State
	submitter  Submitter
	onNavigate func(step int)
	logger     logger.Logger
}

// New starts at step 1 with the given draft. A nil form starts from the
// defaults.
func New(form *models.ProfileFormData, submitter Submitter, opts ...Option) *Wizard {
	if form == nil {
		form = models.NewProfileFormData()
	}
	w := &Wizard{
		form:      form.Clone(),
		step:      FirstStep,
		submitter: submitter,
		logger:    logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Form returns a copy of the current draft.
func (w *Wizard) Form() *models.ProfileFormData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.Clone()
}

// Apply reduces changes into the draft in order. Later changes win.
func (w *Wizard) Apply(changes ...Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range changes {
		c(w.form)
	}
}

// ValidateStep runs the gate for step against the current draft.
func (w *Wizard) ValidateStep(step int) StepErrors {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ValidateStep(w.form, step)
}

func (w *Wizard) CanAdvance(step int) bool {
	return len(w.ValidateStep(step)) == 0
}

// NextStep advances when the current step validates. The returned errors
// are those that blocked it.
func (w *Wizard) NextStep() (int, StepErrors) {
	w.mu.Lock()
	errs := ValidateStep(w.form, w.step)
	if len(errs) > 0 {
		step := w.step
		w.mu.Unlock()
		return step, errs
	}
	step := w.moveLocked(w.step + 1)
	w.mu.Unlock()

	w.navigated(step)
	return step, nil
}

func (w *Wizard) PrevStep() int {
	w.mu.Lock()
	step := w.moveLocked(w.step - 1)
	w.mu.Unlock()

	w.navigated(step)
	return step
}

// GoToStep jumps to n when 1 <= n <= current+1 and reports whether it did.
func (w *Wizard) GoToStep(n int) bool {
	w.mu.Lock()
	if n < FirstStep || n > w.step+1 || n > LastStep {
		w.mu.Unlock()
		return false
	}
	step := w.moveLocked(n)
	w.mu.Unlock()

	w.navigated(step)
	return true
}

func (w *Wizard) moveLocked(n int) int {
	if n < FirstStep {
		n = FirstStep
	}
	if n > LastStep {
		n = LastStep
	}
	w.step = n
	if w.state == StateConfirmed {
		w.state = StateEditing
	}
	return n
}

func (w *Wizard) navigated(step int) {
	if w.onNavigate != nil {
		w.onNavigate(step)
	}
}

// Confirm arms submission. It is the explicit action of the final step's
// submit button and is the only way into Submitting.
func (w *Wizard) Confirm() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.state == StateSubmitted:
		return ErrAlreadySubmitted
	case w.state == StateSubmitting:
		return submission.ErrAlreadySubmitting
	case w.step != LastStep:
		return ErrNotFinalStep
	}
	w.state = StateConfirmed
	return nil
}

// Submit runs the pipeline on a snapshot of the draft. Without a Confirm on
// the current step it does nothing and returns ErrSubmitNotConfirmed, which
// covers implicit submits such as Enter in a text field.
func (w *Wizard) Submit(ctx context.Context) (*submission.Outcome, error) {
	w.mu.Lock()
	if w.state != StateConfirmed || w.step != LastStep {
		state := w.state
		w.mu.Unlock()
		w.logger.Debug("Ignoring unconfirmed submit", map[string]interface{}{
			"state": state.String(),
		})
		return nil, ErrSubmitNotConfirmed
	}
	w.state = StateSubmitting
	snapshot := w.form.Clone()
	w.mu.Unlock()

	out, err := w.submitter.Submit(ctx, snapshot)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil && out != nil && out.Submitted {
		w.state = StateSubmitted
	} else {
		w.state = StateEditing
	}
	return out, err
}
