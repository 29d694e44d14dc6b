package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/2beens/wellnesscoach/internal/planner"

	log "github.com/sirupsen/logrus"
)

// DevUserID is used when onboarding is bypassed in development.
const DevUserID = "test_user_dev"

type Stage int

const (
	StageWelcome Stage = iota
	StageOnboarding
	StageDashboard
)

func (s Stage) String() string {
	switch s {
	case StageWelcome:
		return "welcome"
	case StageOnboarding:
		return "onboarding"
	case StageDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

var (
	ErrNotOnDashboard = errors.New("dashboard not reached yet")
	ErrWrongStage     = errors.New("operation not allowed in this stage")
	ErrEmptyUserID    = errors.New("user id is empty")
)

// BypassOnboarding reports whether the welcome and onboarding screens are skipped.
// Only honoured in development.
func BypassOnboarding(environment string, skipOnboarding bool) bool {
	return skipOnboarding && (environment == "development" || environment == "dev")
}

type NewShellParams struct {
	Environment    string
	SkipOnboarding bool
	Generator      planner.PlanGenerator
}

// Shell is the top level navigation state: the welcome/onboarding gate and,
// once past it, the dashboard views and the plan generation slot.
type Shell struct {
	mu       sync.Mutex
	stage    Stage
	view     View
	userID   string
	email    string
	feedback string

	slot *planner.Slot
}

func NewShell(params NewShellParams) *Shell {
	s := &Shell{
		stage: StageWelcome,
		view:  ViewDashboard,
		slot:  planner.NewSlot(params.Generator),
	}
	if BypassOnboarding(params.Environment, params.SkipOnboarding) {
		log.Warnf("onboarding bypassed, using user id %s", DevUserID)
		s.stage = StageDashboard
		s.userID = DevUserID
	}
	return s
}

func (s *Shell) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Shell) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Shell) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Begin leaves the welcome screen for onboarding.
func (s *Shell) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageWelcome {
		return ErrWrongStage
	}
	s.stage = StageOnboarding
	return nil
}

// CompleteOnboarding is called with the id of the freshly registered user.
func (s *Shell) CompleteOnboarding(userID, email string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageOnboarding {
		return ErrWrongStage
	}
	s.userID = userID
	s.email = email
	s.stage = StageDashboard
	s.view = ViewDashboard
	return nil
}

func (s *Shell) Navigate(view View) error {
	if view.String() == "unknown" {
		return ErrUnknownView
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageDashboard {
		return ErrNotOnDashboard
	}
	s.view = view
	return nil
}

// Back returns any sub view to the dashboard.
func (s *Shell) Back() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewDashboard
	return s.view
}

func (s *Shell) Feedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}

func (s *Shell) SetFeedback(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = text
}

// SubmitFeedback logs the pending feedback and clears it. Blank feedback is
// ignored and reported as not submitted.
func (s *Shell) SubmitFeedback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.feedback) == "" {
		return false
	}
	log.WithField("user_id", s.userID).Infof("feedback submitted: %s", s.feedback)
	s.feedback = ""
	return true
}

// GeneratePlan starts a plan for the current user on the shell's slot,
// aborting whatever was in flight. It returns the run id the updates carry.
func (s *Shell) GeneratePlan(ctx context.Context, kind planner.Kind, requirements string, publish func(planner.Update)) (uint64, error) {
	s.mu.Lock()
	if s.stage != StageDashboard {
		s.mu.Unlock()
		return 0, ErrNotOnDashboard
	}
	req := planner.Request{
		UserID:       s.userID,
		Email:        s.email,
		Kind:         kind,
		Requirements: requirements,
	}
	s.mu.Unlock()

	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.slot.Start(ctx, req, publish), nil
}

// IsCurrentPlan tells whether an update belongs to the latest plan run.
func (s *Shell) IsCurrentPlan(runID uint64) bool {
	return s.slot.IsCurrent(runID)
}

func (s *Shell) PlanBusy() bool {
	return s.slot.Busy()
}

func (s *Shell) CancelPlan() {
	s.slot.Cancel()
}

// Close aborts the in-flight plan and waits for it.
func (s *Shell) Close() {
	s.slot.Close()
}
