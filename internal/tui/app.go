// Package tui is the terminal front end of the coach: welcome screen,
// onboarding wizard and the dashboard with its plan and video views.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/2beens/wellnesscoach/internal/dashboard"
	"github.com/2beens/wellnesscoach/internal/onboarding"
	"github.com/2beens/wellnesscoach/internal/planner"
	"github.com/2beens/wellnesscoach/internal/widgets"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

type NewModelParams struct {
	Ctx           context.Context
	Shell         *dashboard.Shell
	Registrar     onboarding.Registrar
	MetricsSource dashboard.MetricsSource
	Animation     *widgets.Animation
	WizardOptions []onboarding.WizardOption
}

// Model is the root bubbletea model. Navigation state lives in the shell,
// the model only keeps what is needed to draw it.
type Model struct {
	ctx           context.Context
	shell         *dashboard.Shell
	registrar     onboarding.Registrar
	metricsSource dashboard.MetricsSource
	wizardOptions []onboarding.WizardOption

	updates chan planner.Update
	quit    chan struct{}
	stop    func()

	onboarding onboardingModel
	plan       planModel
	player     playerModel

	menu          int
	feedback      textinput.Model
	feedbackFocus bool
	notice        string
	metrics       *dashboard.HealthMetrics
	metricsErr    string
	showVideos    bool

	width  int
	height int
}

func NewModel(params NewModelParams) Model {
	ctx := params.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	anim := params.Animation
	if anim == nil {
		anim = widgets.NewAnimation(widgets.DefaultEmojiInterval, widgets.DefaultCaptionInterval)
	}

	updates := make(chan planner.Update)
	quit := make(chan struct{})
	publish := func(u planner.Update) {
		select {
		case updates <- u:
		case <-quit:
		}
	}

	fb := textinput.New()
	fb.Placeholder = "Tell us how your coach is doing..."
	fb.CharLimit = 500
	fb.Width = 60

	return Model{
		ctx:           ctx,
		shell:         params.Shell,
		registrar:     params.Registrar,
		metricsSource: params.MetricsSource,
		wizardOptions: params.WizardOptions,
		updates:       updates,
		quit:          quit,
		stop:          sync.OnceFunc(func() { close(quit) }),
		plan:          newPlanModel(ctx, params.Shell, publish, anim),
		player:        newPlayerModel(),
		feedback:      fb,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForPlanUpdate(m.updates, m.quit), textinput.Blink}
	if m.shell.Stage() == dashboard.StageDashboard {
		cmds = append(cmds, m.loadMetrics())
	}
	return tea.Batch(cmds...)
}

func (m Model) loadMetrics() tea.Cmd {
	if m.metricsSource == nil {
		return nil
	}
	return fetchMetricsCmd(m.ctx, m.metricsSource, m.shell.UserID())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.plan.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.shell.CancelPlan()
			m.stop()
			return m, tea.Quit
		}
	case planUpdateMsg:
		var cmd tea.Cmd
		m.plan, cmd = m.plan.Update(msg)
		return m, tea.Batch(cmd, waitForPlanUpdate(m.updates, m.quit))
	case emojiTickMsg, captionTickMsg:
		var cmd tea.Cmd
		m.plan, cmd = m.plan.Update(msg)
		return m, cmd
	case playerTickMsg, metadataLoadedMsg:
		var cmd tea.Cmd
		m.player, cmd = m.player.Update(msg)
		return m, cmd
	case metricsMsg:
		if msg.err != nil {
			log.Errorf("dashboard: load metrics: %s", msg.err)
			m.metricsErr = msg.err.Error()
			return m, nil
		}
		m.metrics = &msg.metrics
		m.metricsErr = ""
		return m, nil
	case onboardingDoneMsg:
		if err := m.shell.CompleteOnboarding(msg.userID, msg.email); err != nil {
			log.Errorf("complete onboarding for %s: %s", msg.userID, err)
			return m, nil
		}
		m.menu = 0
		return m, m.loadMetrics()
	}

	switch m.shell.Stage() {
	case dashboard.StageWelcome:
		return m.updateWelcome(msg)
	case dashboard.StageOnboarding:
		var cmd tea.Cmd
		m.onboarding, cmd = m.onboarding.Update(msg)
		return m, cmd
	default:
		return m.updateDashboard(msg)
	}
}

func (m Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "enter":
		if err := m.shell.Begin(); err != nil {
			log.Errorf("begin onboarding: %s", err)
			return m, nil
		}
		m.onboarding = newOnboardingModel(m.ctx, m.registrar, m.wizardOptions...)
		return m, m.onboarding.Init()
	case "q":
		m.stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	view := m.shell.View()

	if isKey && key.String() == "esc" {
		switch {
		case view == dashboard.ViewDashboard && m.feedbackFocus:
			m.feedbackFocus = false
			m.feedback.Blur()
			return m, nil
		case view == dashboard.ViewWorkout && m.showVideos && m.player.open():
			m.player = m.player.close()
			return m, nil
		case view != dashboard.ViewDashboard:
			m.shell.Back()
			m.showVideos = false
			return m, nil
		}
	}

	switch view {
	case dashboard.ViewDashboard:
		if isKey {
			return m.handleDashboardKey(key)
		}
	case dashboard.ViewWorkout:
		if isKey && key.String() == "ctrl+v" {
			m.showVideos = !m.showVideos
			return m, nil
		}
		var cmd tea.Cmd
		if m.showVideos {
			m.player, cmd = m.player.Update(msg)
		} else {
			m.plan, cmd = m.plan.Update(msg)
		}
		return m, cmd
	case dashboard.ViewNutrition, dashboard.ViewReport:
		var cmd tea.Cmd
		m.plan, cmd = m.plan.Update(msg)
		return m, cmd
	case dashboard.ViewProfile, dashboard.ViewSmartwatch:
		if isKey && key.String() == "r" {
			return m, m.loadMetrics()
		}
	}
	return m, nil
}

// menuViews are the views reachable from the dashboard menu.
func menuViews() []dashboard.View {
	return dashboard.Views[1:]
}

func (m Model) handleDashboardKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.feedbackFocus {
		if key.String() == "enter" {
			m.shell.SetFeedback(m.feedback.Value())
			if m.shell.SubmitFeedback() {
				m.notice = "Thanks for your feedback!"
				m.feedback.Reset()
			} else {
				m.notice = "Feedback is empty"
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.feedback, cmd = m.feedback.Update(key)
		return m, cmd
	}

	views := menuViews()
	switch key.String() {
	case "up", "k":
		m.menu = (m.menu - 1 + len(views)) % len(views)
	case "down", "j":
		m.menu = (m.menu + 1) % len(views)
	case "enter":
		return m.navigate(views[m.menu])
	case "f", "tab":
		m.feedbackFocus = true
		m.notice = ""
		return m, m.feedback.Focus()
	case "r":
		return m, m.loadMetrics()
	case "q":
		m.shell.CancelPlan()
		m.stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) navigate(view dashboard.View) (tea.Model, tea.Cmd) {
	if err := m.shell.Navigate(view); err != nil {
		log.Errorf("navigate to %s: %s", view, err)
		return m, nil
	}
	switch view {
	case dashboard.ViewWorkout:
		m.plan.setKind(planner.KindWorkout)
	case dashboard.ViewNutrition:
		m.plan.setKind(planner.KindNutrition)
	case dashboard.ViewReport:
		m.plan.setKind(planner.KindProgress)
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.shell.Stage() {
	case dashboard.StageWelcome:
		body = m.welcomeView()
	case dashboard.StageOnboarding:
		body = m.onboarding.View()
	default:
		body = m.dashboardView()
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (m Model) welcomeView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to Wellness Coach") + "\n\n")
	b.WriteString("Your personal AI coach for training, nutrition and recovery.\n")
	b.WriteString("Answer a few questions and we will build a plan around you.\n\n")
	b.WriteString(subtleStyle.Render("enter get started • q quit"))
	return b.String()
}

func (m Model) dashboardView() string {
	view := m.shell.View()
	header := titleStyle.Render(view.Title()) + subtleStyle.Render("  "+m.shell.UserID())

	var body string
	switch view {
	case dashboard.ViewDashboard:
		body = m.homeView()
	case dashboard.ViewWorkout:
		if m.showVideos {
			body = m.player.View()
		} else {
			body = m.plan.View() + subtleStyle.Render(" • ctrl+v videos")
		}
	case dashboard.ViewNutrition, dashboard.ViewReport:
		body = m.plan.View()
	case dashboard.ViewProfile:
		body = m.profileView()
	case dashboard.ViewSmartwatch:
		body = m.smartwatchView()
	}
	return header + "\n\n" + body
}

func (m Model) metricsCards() string {
	if m.metricsErr != "" {
		return errorStyle.Render("Could not load metrics: " + m.metricsErr)
	}
	if m.metrics == nil {
		return subtleStyle.Render("Loading metrics...")
	}
	hm := m.metrics
	cards := []string{
		cardStyle.Render(fmt.Sprintf("Recovery\n%s", selectedStyle.Render(fmt.Sprintf("%d%%", hm.RecoveryScore)))),
		cardStyle.Render(fmt.Sprintf("Sleep\n%s", selectedStyle.Render(fmt.Sprintf("%d", hm.SleepScore)))),
		cardStyle.Render(fmt.Sprintf("Readiness\n%s", readinessStyle(hm.Readiness).Render(string(hm.Readiness)))),
		cardStyle.Render(fmt.Sprintf("Active %d/%d min\n%s",
			hm.ActiveMinutes, hm.ActiveMinutesGoal, progressBar(hm.ActiveMinutesProgress(), 20))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n" +
		fmt.Sprintf("Today's workout: %s • Calories burned: %d", hm.TodaysWorkout, hm.CaloriesBurned)
}

func (m Model) homeView() string {
	var b strings.Builder
	b.WriteString(m.metricsCards() + "\n\n")

	for i, v := range menuViews() {
		if i == m.menu && !m.feedbackFocus {
			b.WriteString(selectedStyle.Render("› "+v.Title()) + "\n")
		} else {
			b.WriteString("  " + v.Title() + "\n")
		}
	}

	b.WriteString("\n" + titleStyle.Render("Feedback") + "\n")
	b.WriteString(m.feedback.View() + "\n")
	if m.notice != "" {
		b.WriteString(okStyle.Render(m.notice) + "\n")
	}

	help := "↑↓ choose • enter open • f feedback • r refresh • q quit"
	if m.feedbackFocus {
		help = "enter send • esc done"
	}
	b.WriteString("\n" + subtleStyle.Render(help))
	return b.String()
}

func (m Model) profileView() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("User: %s\n", m.shell.UserID()))
	if m.metrics != nil {
		b.WriteString(fmt.Sprintf("Today's workout: %s\n", m.metrics.TodaysWorkout))
	}
	b.WriteString("\n" + subtleStyle.Render("esc back"))
	return b.String()
}

func (m Model) smartwatchView() string {
	var b strings.Builder
	if m.metrics == nil {
		b.WriteString(subtleStyle.Render("No data from your watch yet") + "\n")
	} else {
		hm := m.metrics
		b.WriteString(fmt.Sprintf("Resting heart rate: %d bpm\n", hm.RestingHeartRate))
		b.WriteString(fmt.Sprintf("Heart rate variation: %d ms\n", hm.HeartRateVariation))
		b.WriteString(fmt.Sprintf("Sleep score: %d\n", hm.SleepScore))
		b.WriteString(fmt.Sprintf("Recovery score: %d%%\n", hm.RecoveryScore))
		b.WriteString("Readiness: " + readinessStyle(hm.Readiness).Render(string(hm.Readiness)) + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render("r refresh • esc back"))
	return b.String()
}
