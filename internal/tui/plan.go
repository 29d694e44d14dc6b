package tui

import (
	"context"
	"strings"

	"github.com/2beens/wellnesscoach/internal/dashboard"
	"github.com/2beens/wellnesscoach/internal/planner"
	"github.com/2beens/wellnesscoach/internal/widgets"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

var kindTitles = map[planner.Kind]string{
	planner.KindWorkout:   "Workout Plan",
	planner.KindNutrition: "Nutrition Plan",
	planner.KindProgress:  "Gym Progress Report",
}

var kindPlaceholders = map[planner.Kind]string{
	planner.KindWorkout:   "e.g. 45 minute sessions, no barbell, focus on upper body",
	planner.KindNutrition: "e.g. vegetarian, 2500 kcal, high protein",
	planner.KindProgress:  "e.g. bench went from 60 to 70kg over 6 weeks",
}

// planModel asks for requirements and shows the plan as it streams in.
type planModel struct {
	ctx     context.Context
	shell   *dashboard.Shell
	publish func(planner.Update)

	kind     planner.Kind
	outKind  planner.Kind
	input    textinput.Model
	viewport viewport.Model
	anim     *widgets.Animation

	runID      uint64
	generating bool
	animating  bool
	live       string
	final      string
	err        string
}

func newPlanModel(ctx context.Context, shell *dashboard.Shell, publish func(planner.Update), anim *widgets.Animation) planModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 1000
	ti.Width = 70
	ti.Focus()

	m := planModel{
		ctx:      ctx,
		shell:    shell,
		publish:  publish,
		input:    ti,
		viewport: viewport.New(80, 16),
		anim:     anim,
	}
	m.setKind(planner.KindWorkout)
	return m
}

func (m *planModel) setKind(kind planner.Kind) {
	m.kind = kind
	m.input.Placeholder = kindPlaceholders[kind]
}

func (m *planModel) resize(width, height int) {
	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-12, 5)
	m.input.Width = max(width-8, 20)
}

// start kicks off a generation for the current kind. A run already in flight
// is aborted by the shell's slot.
func (m planModel) start() (planModel, tea.Cmd) {
	runID, err := m.shell.GeneratePlan(m.ctx, m.kind, m.input.Value(), m.publish)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	log.Debugf("plan: run %d started (%s)", runID, m.kind)

	m.runID = runID
	m.outKind = m.kind
	m.generating = true
	m.animating = true
	m.live, m.final, m.err = "", "", ""
	m.viewport.SetContent("")
	m.anim.Reset()
	return m, tea.Batch(
		emojiTick(runID, m.anim.EmojiInterval()),
		captionTick(runID, m.anim.CaptionInterval()),
	)
}

func (m planModel) cancel() planModel {
	if !m.generating {
		return m
	}
	m.shell.CancelPlan()
	m.generating = false
	m.animating = false
	m.live = ""
	m.err = "Plan generation cancelled"
	return m
}

func (m planModel) current(runID uint64) bool {
	return runID == m.runID && m.shell.IsCurrentPlan(runID)
}

func (m planModel) Update(msg tea.Msg) (planModel, tea.Cmd) {
	switch msg := msg.(type) {
	case planUpdateMsg:
		u := msg.update
		if !m.current(u.RunID) {
			log.Tracef("plan: dropping update of stale run %d", u.RunID)
			return m, nil
		}
		switch u.Kind {
		case planner.UpdatePartial:
			m.animating = false
			m.live = u.Text
			m.viewport.SetContent(m.live)
			m.viewport.GotoBottom()
		case planner.UpdateDone:
			m.generating = false
			m.animating = false
			m.live = ""
			m.final = u.Text
			m.viewport.SetContent(m.final)
			m.viewport.GotoTop()
		case planner.UpdateFailed:
			m.generating = false
			m.animating = false
			m.live = ""
			m.viewport.SetContent("")
			if u.Err != nil {
				m.err = u.Err.Error()
			} else {
				m.err = "plan generation failed"
			}
		}
		return m, nil
	case emojiTickMsg:
		if !m.animating || !m.current(msg.runID) {
			return m, nil
		}
		m.anim.NextEmoji()
		return m, emojiTick(msg.runID, m.anim.EmojiInterval())
	case captionTickMsg:
		if !m.animating || !m.current(msg.runID) {
			return m, nil
		}
		m.anim.NextCaption()
		return m, captionTick(msg.runID, m.anim.CaptionInterval())
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.start()
		case "ctrl+x":
			return m.cancel(), nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m planModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Generate "+kindTitles[m.kind]) + "\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.animating:
		frame := m.anim.Frame()
		b.WriteString(panelStyle.Render(frame.Emoji+"  "+frame.Caption) + "\n")
	case m.live != "" || m.final != "":
		heading := kindTitles[m.outKind]
		if m.generating {
			heading += subtleStyle.Render(" (streaming...)")
		}
		b.WriteString(titleStyle.Render(heading) + "\n")
		b.WriteString(panelStyle.Render(m.viewport.View()) + "\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render("Error: "+m.err) + "\n")
	}

	help := "enter generate • ↑↓ scroll • esc back"
	if m.generating {
		help = "ctrl+x cancel • enter restart • ↑↓ scroll • esc back"
	}
	b.WriteString("\n" + subtleStyle.Render(help))
	return b.String()
}
