package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/2beens/wellnesscoach/internal/dashboard"
	"github.com/2beens/wellnesscoach/internal/planner"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMetrics struct{}

func (failingMetrics) Snapshot(context.Context, string) (dashboard.HealthMetrics, error) {
	return dashboard.HealthMetrics{}, errors.New("watch offline")
}

func newTestModel(t *testing.T, shell *dashboard.Shell, registrar *testRegistrar) Model {
	t.Helper()
	m := NewModel(NewModelParams{
		Ctx:           context.Background(),
		Shell:         shell,
		Registrar:     registrar,
		MetricsSource: dashboard.NewStaticMetrics(),
	})
	t.Cleanup(m.stop)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func send(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, key(k))
	}
	return m
}

func TestModel_WelcomeToDashboard(t *testing.T) {
	shell := dashboard.NewShell(dashboard.NewShellParams{Environment: "production", Generator: blockingGenerator{}})
	t.Cleanup(shell.Close)
	m := newTestModel(t, shell, &testRegistrar{})

	assert.Contains(t, m.View(), "Welcome to Wellness Coach")
	m = send(t, m, "enter")
	assert.Equal(t, dashboard.StageOnboarding, shell.Stage())
	assert.Contains(t, m.View(), "Step 1 of 4")

	m, cmd := update(t, m, onboardingDoneMsg{userID: "user_jane_example_com_1", email: "jane@example.com"})
	assert.Equal(t, dashboard.StageDashboard, shell.Stage())
	assert.Equal(t, "user_jane_example_com_1", shell.UserID())
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading metrics...")

	m, _ = update(t, m, cmd())
	view := m.View()
	assert.Contains(t, view, "Upper Body Strength")
	assert.Contains(t, view, "78%")
	assert.Contains(t, view, "High")
	assert.Contains(t, view, "Active 87/90 min")
}

func TestModel_Bypass(t *testing.T) {
	shell := newDevShell(t, blockingGenerator{})
	m := newTestModel(t, shell, &testRegistrar{})

	assert.Equal(t, dashboard.StageDashboard, shell.Stage())
	assert.Contains(t, m.View(), dashboard.DevUserID)
	assert.NotNil(t, m.Init())
}

func TestModel_MetricsError(t *testing.T) {
	shell := newDevShell(t, blockingGenerator{})
	m := NewModel(NewModelParams{Shell: shell, MetricsSource: failingMetrics{}})
	t.Cleanup(m.stop)

	m, _ = update(t, m, m.loadMetrics()())
	assert.Contains(t, m.View(), "Could not load metrics: watch offline")
}

func TestModel_Navigation(t *testing.T) {
	shell := newDevShell(t, blockingGenerator{})
	m := newTestModel(t, shell, &testRegistrar{})

	m = send(t, m, "enter")
	assert.Equal(t, dashboard.ViewWorkout, shell.View())
	assert.Equal(t, planner.KindWorkout, m.plan.kind)
	assert.Contains(t, m.View(), "Generate Workout Plan")

	m = send(t, m, "esc")
	assert.Equal(t, dashboard.ViewDashboard, shell.View())

	m = send(t, m, "down", "enter")
	assert.Equal(t, dashboard.ViewNutrition, shell.View())
	assert.Equal(t, planner.KindNutrition, m.plan.kind)

	m = send(t, m, "esc", "up", "up", "enter")
	assert.Equal(t, dashboard.ViewReport, shell.View())
	assert.Equal(t, planner.KindProgress, m.plan.kind)
	assert.Contains(t, m.View(), "Gym Progress Report")

	m = send(t, m, "esc", "up", "enter")
	assert.Equal(t, dashboard.ViewSmartwatch, shell.View())
	m, _ = update(t, m, m.loadMetrics()())
	assert.Contains(t, m.View(), "Resting heart rate: 62 bpm")
}

func TestModel_Feedback(t *testing.T) {
	shell := newDevShell(t, blockingGenerator{})
	m := newTestModel(t, shell, &testRegistrar{})

	m = send(t, m, "f", "enter")
	assert.Equal(t, "Feedback is empty", m.notice)

	m = send(t, m, "love the plans", "enter")
	assert.Equal(t, "Thanks for your feedback!", m.notice)
	assert.Empty(t, m.feedback.Value())
	assert.Empty(t, shell.Feedback())

	// q is text while the feedback box has focus
	m, _ = update(t, m, key("q"))
	assert.Equal(t, "q", m.feedback.Value())
	assert.True(t, m.feedbackFocus)
	select {
	case <-m.quit:
		t.Fatal("typing q into the feedback box quit the app")
	default:
	}

	m = send(t, m, "esc")
	assert.False(t, m.feedbackFocus)
	assert.Equal(t, dashboard.ViewDashboard, shell.View())
}

func TestModel_WorkoutVideos(t *testing.T) {
	shell := newDevShell(t, blockingGenerator{})
	m := newTestModel(t, shell, &testRegistrar{})

	m = send(t, m, "enter", "ctrl+v")
	assert.Contains(t, m.View(), "Exercise Videos")

	m = send(t, m, "down", "enter")
	require.True(t, m.player.open())
	assert.Equal(t, "Pull-ups", m.player.player.Exercise())

	// first esc closes the player, the second leaves the view
	m = send(t, m, "esc")
	assert.False(t, m.player.open())
	assert.Equal(t, dashboard.ViewWorkout, shell.View())
	m = send(t, m, "esc")
	assert.Equal(t, dashboard.ViewDashboard, shell.View())
	assert.False(t, m.showVideos)
}

func TestModel_PlanUpdatesFlowThroughChannel(t *testing.T) {
	shell := newDevShell(t, scriptedGenerator{fragments: []string{"Day 1\n"}})
	m := newTestModel(t, shell, &testRegistrar{})

	m = send(t, m, "enter", "full body", "enter")
	require.True(t, m.plan.generating)

	wait := waitForPlanUpdate(m.updates, m.quit)
	msg := wait()
	m, cmd := update(t, m, msg)
	assert.Equal(t, "Day 1\n", m.plan.live)
	require.NotNil(t, cmd)

	m, _ = update(t, m, wait())
	assert.Equal(t, "Day 1\n", m.plan.final)
	assert.False(t, m.plan.generating)
}

func TestModel_QuitReleasesWaiter(t *testing.T) {
	shell := newDevShell(t, blockingGenerator{})
	m := newTestModel(t, shell, &testRegistrar{})

	_, cmd := update(t, m, key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, waitForPlanUpdate(m.updates, m.quit)())
}
