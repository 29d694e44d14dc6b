package tui

import (
	"context"
	"time"

	"github.com/2beens/wellnesscoach/internal/dashboard"
	"github.com/2beens/wellnesscoach/internal/onboarding"
	"github.com/2beens/wellnesscoach/internal/planner"

	tea "github.com/charmbracelet/bubbletea"
)

type registerDoneMsg struct {
	userID string
	err    error
}

// onboardingDoneMsg tells the app the wizard finished registration.
type onboardingDoneMsg struct {
	userID string
	email  string
}

type planUpdateMsg struct {
	update planner.Update
}

type emojiTickMsg struct {
	runID uint64
}

type captionTickMsg struct {
	runID uint64
}

type metricsMsg struct {
	metrics dashboard.HealthMetrics
	err     error
}

type playerTickMsg struct {
	session int
}

type metadataLoadedMsg struct {
	session  int
	duration float64
}

func registerCmd(ctx context.Context, registrar onboarding.Registrar, userID string, data onboarding.Data) tea.Cmd {
	return func() tea.Msg {
		err := registrar.Register(ctx, userID, data)
		return registerDoneMsg{userID: userID, err: err}
	}
}

// waitForPlanUpdate blocks on the shared update channel. Exactly one of
// these is pending at a time, it is re-armed after every update.
func waitForPlanUpdate(updates <-chan planner.Update, quit <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-updates:
			return planUpdateMsg{update: u}
		case <-quit:
			return nil
		}
	}
}

func emojiTick(runID uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return emojiTickMsg{runID: runID}
	})
}

func captionTick(runID uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return captionTickMsg{runID: runID}
	})
}

func fetchMetricsCmd(ctx context.Context, source dashboard.MetricsSource, userID string) tea.Cmd {
	return func() tea.Msg {
		m, err := source.Snapshot(ctx, userID)
		return metricsMsg{metrics: m, err: err}
	}
}
