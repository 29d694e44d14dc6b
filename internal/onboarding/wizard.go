package onboarding

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=onboarding_mocks_test.go -package=onboarding_test

const TotalSteps = 4

type State int

const (
	StateStep1 State = iota + 1
	StateStep2
	StateStep3
	StateStep4
	StateSubmitting
	StateSubmitted
	StateSubmitFailed
)

func (s State) String() string {
	switch s {
	case StateStep1, StateStep2, StateStep3, StateStep4:
		return "step" + strconv.Itoa(int(s))
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateSubmitFailed:
		return "submit-failed"
	default:
		return "unknown"
	}
}

var (
	ErrStepInvalid      = errors.New("current step is not complete")
	ErrNotEditable      = errors.New("onboarding data cannot change now")
	ErrSubmitInProgress = errors.New("registration already in progress")
	ErrUnknownField     = errors.New("unknown onboarding field")
)

// Registrar persists a finished questionnaire with the coaching backend.
type Registrar interface {
	Register(ctx context.Context, userID string, data Data) error
}

var nonAlnumRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NewUserID derives the user id from the email and the registration time.
func NewUserID(email string, now time.Time) string {
	return fmt.Sprintf("user_%s_%d", nonAlnumRegex.ReplaceAllString(email, "_"), now.UnixMilli())
}

// Register assigns a user id and hands the data to the registrar.
func Register(ctx context.Context, registrar Registrar, data Data, now time.Time) (string, error) {
	userID := NewUserID(data.Email, now)
	if err := registrar.Register(ctx, userID, data); err != nil {
		return "", err
	}
	return userID, nil
}

// Wizard is the four step onboarding state machine.
// It is not safe for concurrent use, UIs drive it from their update loop.
type Wizard struct {
	state     State
	data      Data
	errors    ValidationErrors
	registrar Registrar
	now       func() time.Time

	userID    string
	submitErr string
}

type WizardOption func(*Wizard)

func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) {
		w.now = now
	}
}

func NewWizard(registrar Registrar, opts ...WizardOption) *Wizard {
	w := &Wizard{
		state:     StateStep1,
		errors:    ValidationErrors{},
		registrar: registrar,
		now:       time.Now,
		data: Data{
			PreferredWorkoutTypes: []string{},
			FitnessGoals:          []string{},
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) State() State { return w.state }
func (w *Wizard) Data() Data { return w.data }
func (w *Wizard) UserID() string { return w.userID }
func (w *Wizard) SubmitError() string { return w.submitErr }
func (w *Wizard) Errors() ValidationErrors { return w.errors }
func (w *Wizard) FieldError(field string) string { return w.errors[field] }

// Step is the questionnaire page on screen, 1..4.
func (w *Wizard) Step() int {
	if w.state >= StateStep1 && w.state <= StateStep4 {
		return int(w.state)
	}
	return TotalSteps
}

// Progress in percent.
func (w *Wizard) Progress() float64 {
	return float64(w.Step()) / TotalSteps * 100
}

func (w *Wizard) editable() bool {
	return w.state != StateSubmitting && w.state != StateSubmitted
}

// Update sets a scalar field and re-validates it when it has a validator.
func (w *Wizard) Update(field, value string) error {
	if !w.editable() {
		return ErrNotEditable
	}

	switch field {
	case FieldEmail:
		w.data.Email = value
	case FieldAge:
		w.data.Age = value
	case FieldGender:
		w.data.Gender = value
	case FieldHeight:
		w.data.Height = value
	case FieldCurrentWeight:
		w.data.CurrentWeight = value
	case FieldGoalWeight:
		w.data.GoalWeight = value
	case FieldExperienceLevel:
		w.data.ExperienceLevel = value
	case FieldWorkoutDays:
		w.data.WorkoutDays = value
	case FieldHealthNotes:
		w.data.HealthNotes = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	if isValidatedField(field) {
		if msg := ValidateField(field, value); msg != "" {
			w.errors[field] = msg
		} else {
			delete(w.errors, field)
		}
	}
	return nil
}

// Toggle flips membership of item in one of the multi-select fields.
func (w *Wizard) Toggle(field, item string) error {
	if !w.editable() {
		return ErrNotEditable
	}

	switch field {
	case FieldPreferredWorkoutTypes:
		w.data.PreferredWorkoutTypes = toggle(w.data.PreferredWorkoutTypes, item)
	case FieldFitnessGoals:
		w.data.FitnessGoals = toggle(w.data.FitnessGoals, item)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// StepValid reports whether the page on screen allows moving forward.
func (w *Wizard) StepValid() bool {
	step := w.Step()
	if step == 1 {
		for _, f := range ValidatedFields {
			if w.errors.Has(f) {
				return false
			}
		}
	}
	return len(StepErrors(step, w.data)) == 0
}

// Next advances one page. On the last page (or after a failed
// submission) it registers the user and blocks until the registrar returns.
func (w *Wizard) Next(ctx context.Context) (State, error) {
	switch w.state {
	case StateStep1, StateStep2, StateStep3:
		if !w.StepValid() {
			return w.state, ErrStepInvalid
		}
		w.state++
		return w.state, nil
	case StateStep4, StateSubmitFailed:
		userID, err := w.BeginSubmit()
		if err != nil {
			return w.state, err
		}
		err = w.registrar.Register(ctx, userID, w.data)
		w.CompleteSubmit(err)
		return w.state, err
	case StateSubmitting:
		return w.state, ErrSubmitInProgress
	default:
		return w.state, nil
	}
}

// BeginSubmit moves to Submitting and returns the fresh user id.
// Event loop UIs call it, run the registrar themselves, then call CompleteSubmit.
func (w *Wizard) BeginSubmit() (string, error) {
	switch w.state {
	case StateStep4, StateSubmitFailed:
	case StateSubmitting:
		return "", ErrSubmitInProgress
	default:
		return "", ErrStepInvalid
	}
	if !w.StepValid() {
		return "", ErrStepInvalid
	}

	w.userID = NewUserID(w.data.Email, w.now())
	w.submitErr = ""
	w.state = StateSubmitting
	return w.userID, nil
}

func (w *Wizard) CompleteSubmit(err error) State {
	if w.state != StateSubmitting {
		return w.state
	}
	if err != nil {
		log.Errorf("onboarding: register user %s: %s", w.userID, err)
		w.submitErr = err.Error()
		if w.submitErr == "" {
			w.submitErr = "Failed to register user"
		}
		w.state = StateSubmitFailed
		return w.state
	}
	log.Debugf("onboarding: user %s registered", w.userID)
	w.state = StateSubmitted
	return w.state
}

// Back goes one page back, a failed submission returns to the last page.
func (w *Wizard) Back() State {
	switch w.state {
	case StateStep2, StateStep3, StateStep4:
		w.state--
	case StateSubmitFailed:
		w.state = StateStep4
	}
	return w.state
}
