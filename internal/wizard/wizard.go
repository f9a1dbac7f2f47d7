// Package wizard implements the three-step employee registration workflow:
// personal data, employment data and political sponsorship. State changes
// only through the Wizard methods; forward moves are gated by the step
// validators and the final submit performs a single create on the record store.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/cityhall/employee-registry/internal/models"
)

var (
	ErrNotOnFinalStep     = errors.New("submit is only available on the last step")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrStepIncomplete     = errors.New("required fields are missing")
	ErrSubmissionFailed   = errors.New("employee could not be created")
)

// Submission persists a completed draft
type Submission interface {
	Submit(ctx context.Context, d Draft) (*models.Employee, error)
}

// CaptureDevice produces a still image payload on demand
type CaptureDevice interface {
	Capture(ctx context.Context) (string, error)
}

// State is the whole wizard session: step, draft and the two UI flags
type State struct {
	Step         Step  `json:"step"`
	Draft        Draft `json:"draft"`
	CameraActive bool  `json:"camera_active"`
	Submitting   bool  `json:"submitting"`
}

// InitialState is the state of a fresh or just-submitted wizard
func InitialState() State {
	return State{Step: FirstStep}
}

// Deps are the collaborators of a Wizard
type Deps struct {
	References References
	Submission Submission
	Notifier   Notifier
}

// Wizard is the registration controller. It is not safe for concurrent use;
// callers serialise access per session.
type Wizard struct {
	state      State
	refs       References
	submission Submission
	notifier   Notifier
}

// New returns a wizard in its initial state
func New(deps Deps) *Wizard {
	return Restore(InitialState(), deps)
}

// Restore resumes a wizard from a stored state
func Restore(state State, deps Deps) *Wizard {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = discard{}
	}
	state.Step = clampStep(state.Step)
	state.Draft = state.Draft.clone()
	return &Wizard{
		state:      state,
		refs:       deps.References,
		submission: deps.Submission,
		notifier:   notifier,
	}
}

// State returns a copy of the current state
func (w *Wizard) State() State {
	s := w.state
	s.Draft = s.Draft.clone()
	return s
}

// Step returns the active step
func (w *Wizard) Step() Step {
	return w.state.Step
}

// Draft returns a copy of the draft
func (w *Wizard) Draft() Draft {
	return w.state.Draft.clone()
}

// SetField overwrites one draft field; nil clears it
func (w *Wizard) SetField(name Field, value *string) error {
	return w.state.Draft.set(name, value)
}

// Next validates the active step and moves forward on success. The draft is
// validated on every call. Returns false when the move was blocked.
func (w *Wizard) Next() bool {
	if !Validate(w.state.Step, w.state.Draft) {
		w.notifier.Notify(noticeIncomplete)
		return false
	}
	if w.state.Step < LastStep {
		w.moveTo(w.state.Step + 1)
	}
	return true
}

// Back moves one step backwards. It is never validated.
func (w *Wizard) Back() {
	if w.state.Step > FirstStep {
		w.moveTo(w.state.Step - 1)
	}
}

func (w *Wizard) moveTo(step Step) {
	w.state.Step = clampStep(step)
	if w.state.Step != StepPersonal {
		w.state.CameraActive = false
	}
}

// OpenCamera shows the capture panel. Only step 1 has one.
func (w *Wizard) OpenCamera() bool {
	if w.state.Step != StepPersonal {
		return false
	}
	w.state.CameraActive = true
	return true
}

// CloseCamera hides the capture panel
func (w *Wizard) CloseCamera() {
	w.state.CameraActive = false
}

// Capture asks the device for a still image. A device failure or an empty
// payload leaves everything as it was, camera open included.
func (w *Wizard) Capture(ctx context.Context, device CaptureDevice) bool {
	if !w.state.CameraActive || w.state.Step != StepPersonal || device == nil {
		return false
	}
	payload, err := device.Capture(ctx)
	if err != nil || payload == "" {
		return false
	}
	w.state.Draft.Photo = &payload
	w.state.CameraActive = false
	w.notifier.Notify(noticePhotoCaptured)
	return true
}

// Submit creates the employee from the draft. It is only accepted on the last
// step, once the sponsorship validator holds and no other submit is running.
// On success the wizard starts over; on failure the draft and step are kept
// so the operator can retry.
func (w *Wizard) Submit(ctx context.Context) (*models.Employee, error) {
	if w.state.Step != LastStep {
		return nil, ErrNotOnFinalStep
	}
	if w.state.Submitting {
		return nil, ErrSubmissionInFlight
	}
	if !Validate(LastStep, w.state.Draft) {
		w.notifier.Notify(noticeIncomplete)
		return nil, ErrStepIncomplete
	}

	w.state.Submitting = true
	employee, err := w.submission.Submit(ctx, w.state.Draft.clone())
	w.state.Submitting = false

	if err != nil {
		w.notifier.Notify(noticeRegisterFailed)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	w.state = InitialState()
	w.notifier.Notify(noticeRegistered)
	return employee, nil
}

// Reset discards the draft and returns to the first step
func (w *Wizard) Reset() {
	w.state = InitialState()
}

// StepIndicator is one bubble of the progress header
type StepIndicator struct {
	Number Step   `json:"number"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// View is what the console renders for the active step
type View struct {
	Step         Step               `json:"step"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Steps        []StepIndicator    `json:"steps"`
	Draft        Draft              `json:"draft"`
	Options      map[Field][]Option `json:"options"`
	CameraActive bool               `json:"camera_active"`
	Submitting   bool               `json:"submitting"`
	CanGoBack    bool               `json:"can_go_back"`
	CanSubmit    bool               `json:"can_submit"`
}

// View returns the render data of the active step
func (w *Wizard) View() View {
	step := w.state.Step
	indicators := make([]StepIndicator, 0, len(Steps))
	for _, s := range Steps {
		status := "pending"
		switch {
		case s < step:
			status = "done"
		case s == step:
			status = "current"
		}
		indicators = append(indicators, StepIndicator{Number: s, Title: s.Title(), Status: status})
	}

	return View{
		Step:         step,
		Title:        step.Title(),
		Description:  step.Description(),
		Steps:        indicators,
		Draft:        w.state.Draft.clone(),
		Options:      w.refs.optionsFor(step),
		CameraActive: w.state.CameraActive,
		Submitting:   w.state.Submitting,
		CanGoBack:    step > FirstStep,
		CanSubmit:    step == LastStep && !w.state.Submitting && Validate(LastStep, w.state.Draft),
	}
}
