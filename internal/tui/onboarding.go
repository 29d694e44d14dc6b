package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/2beens/wellnesscoach/internal/onboarding"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

type rowKind int

const (
	rowText rowKind = iota
	rowChoice
	rowMulti
)

type formRow struct {
	field string
	label string
	kind  rowKind
	// options of choice and multi rows, as value/label pairs
	options []onboarding.Option
}

func stringOptions(items []string) []onboarding.Option {
	options := make([]onboarding.Option, 0, len(items))
	for _, item := range items {
		options = append(options, onboarding.Option{Value: item, Label: item})
	}
	return options
}

var stepRows = map[int][]formRow{
	1: {
		{field: onboarding.FieldEmail, label: "Email", kind: rowText},
		{field: onboarding.FieldAge, label: "Age", kind: rowText},
		{field: onboarding.FieldGender, label: "Gender", kind: rowChoice, options: onboarding.Genders},
		{field: onboarding.FieldHeight, label: "Height (cm)", kind: rowText},
		{field: onboarding.FieldCurrentWeight, label: "Current Weight (kg)", kind: rowText},
		{field: onboarding.FieldGoalWeight, label: "Goal Weight (kg)", kind: rowText},
	},
	2: {
		{field: onboarding.FieldExperienceLevel, label: "Experience Level", kind: rowChoice, options: onboarding.ExperienceLevels},
		{field: onboarding.FieldWorkoutDays, label: "Workout Days per Week", kind: rowChoice, options: onboarding.WorkoutDays},
	},
	3: {
		{field: onboarding.FieldPreferredWorkoutTypes, label: "Preferred Workout Types", kind: rowMulti, options: stringOptions(onboarding.WorkoutTypes)},
		{field: onboarding.FieldFitnessGoals, label: "Fitness Goals", kind: rowMulti, options: stringOptions(onboarding.FitnessGoals)},
	},
	4: {
		{field: onboarding.FieldHealthNotes, label: "Health Notes (optional)", kind: rowText},
	},
}

var stepTitles = map[int]string{
	1: "Personal Information",
	2: "Fitness Experience",
	3: "Preferences & Goals",
	4: "Health Information",
}

// onboardingModel renders the wizard and feeds key presses into it.
// Registration runs as a command, the wizard only sees its outcome.
type onboardingModel struct {
	ctx       context.Context
	wizard    *onboarding.Wizard
	registrar onboarding.Registrar

	inputs  map[string]textinput.Model
	focus   int
	cursors map[string]int
	notice  string
	spinner spinner.Model
}

func newOnboardingModel(ctx context.Context, registrar onboarding.Registrar, opts ...onboarding.WizardOption) onboardingModel {
	inputs := map[string]textinput.Model{}
	for _, rows := range stepRows {
		for _, row := range rows {
			if row.kind != rowText {
				continue
			}
			ti := textinput.New()
			ti.Prompt = ""
			ti.CharLimit = 120
			ti.Width = 40
			if row.field == onboarding.FieldHealthNotes {
				ti.CharLimit = 500
				ti.Width = 60
				ti.Placeholder = "injuries, conditions, anything your coach should know"
			}
			inputs[row.field] = ti
		}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = selectedStyle

	m := onboardingModel{
		ctx:       ctx,
		wizard:    onboarding.NewWizard(registrar, opts...),
		registrar: registrar,
		inputs:    inputs,
		cursors:   map[string]int{},
		spinner:   s,
	}
	m.focusRow(0)
	return m
}

func (m *onboardingModel) rows() []formRow {
	return stepRows[m.wizard.Step()]
}

func (m *onboardingModel) currentRow() formRow {
	return m.rows()[m.focus]
}

func (m *onboardingModel) focusRow(i int) {
	rows := m.rows()
	if len(rows) == 0 {
		return
	}
	m.focus = (i + len(rows)) % len(rows)
	for field, ti := range m.inputs {
		if field == rows[m.focus].field {
			ti.Focus()
		} else {
			ti.Blur()
		}
		m.inputs[field] = ti
	}
}

func (m onboardingModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m onboardingModel) Update(msg tea.Msg) (onboardingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		state := m.wizard.CompleteSubmit(msg.err)
		if state == onboarding.StateSubmitted {
			userID, email := msg.userID, m.wizard.Data().Email
			return m, func() tea.Msg {
				return onboardingDoneMsg{userID: userID, email: email}
			}
		}
		m.focusRow(0)
		return m, nil
	case spinner.TickMsg:
		if m.wizard.State() != onboarding.StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m onboardingModel) handleKey(msg tea.KeyMsg) (onboardingModel, tea.Cmd) {
	if m.wizard.State() == onboarding.StateSubmitting {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return m.next()
	case "esc":
		if m.wizard.Step() > 1 || m.wizard.State() == onboarding.StateSubmitFailed {
			m.wizard.Back()
			m.notice = ""
			m.focusRow(0)
		}
		return m, nil
	case "tab", "down":
		m.focusRow(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusRow(m.focus - 1)
		return m, nil
	}

	row := m.currentRow()
	switch row.kind {
	case rowText:
		ti := m.inputs[row.field]
		var cmd tea.Cmd
		ti, cmd = ti.Update(msg)
		m.inputs[row.field] = ti
		if ti.Value() != m.fieldValue(row.field) {
			m.setField(row.field, ti.Value())
		}
		return m, cmd
	case rowChoice:
		switch msg.String() {
		case "left", "h":
			m.moveCursor(row, -1)
			m.setField(row.field, row.options[m.cursors[row.field]].Value)
		case "right", "l":
			m.moveCursor(row, 1)
			m.setField(row.field, row.options[m.cursors[row.field]].Value)
		case " ":
			m.setField(row.field, row.options[m.cursors[row.field]].Value)
		}
	case rowMulti:
		switch msg.String() {
		case "left", "h":
			m.moveCursor(row, -1)
		case "right", "l":
			m.moveCursor(row, 1)
		case " ", "x":
			item := row.options[m.cursors[row.field]].Value
			if err := m.wizard.Toggle(row.field, item); err != nil {
				log.Debugf("onboarding: toggle %s: %s", row.field, err)
			}
		}
	}
	return m, nil
}

func (m *onboardingModel) moveCursor(row formRow, delta int) {
	n := len(row.options)
	m.cursors[row.field] = (m.cursors[row.field] + delta + n) % n
}

func (m *onboardingModel) setField(field, value string) {
	if err := m.wizard.Update(field, value); err != nil {
		log.Debugf("onboarding: update %s: %s", field, err)
	}
}

func (m onboardingModel) fieldValue(field string) string {
	d := m.wizard.Data()
	switch field {
	case onboarding.FieldEmail:
		return d.Email
	case onboarding.FieldAge:
		return d.Age
	case onboarding.FieldHeight:
		return d.Height
	case onboarding.FieldCurrentWeight:
		return d.CurrentWeight
	case onboarding.FieldGoalWeight:
		return d.GoalWeight
	case onboarding.FieldHealthNotes:
		return d.HealthNotes
	case onboarding.FieldGender:
		return d.Gender
	case onboarding.FieldExperienceLevel:
		return d.ExperienceLevel
	case onboarding.FieldWorkoutDays:
		return d.WorkoutDays
	}
	return ""
}

func (m onboardingModel) next() (onboardingModel, tea.Cmd) {
	switch m.wizard.State() {
	case onboarding.StateStep4, onboarding.StateSubmitFailed:
		userID, err := m.wizard.BeginSubmit()
		if err != nil {
			m.notice = noticeFor(err)
			return m, nil
		}
		m.notice = ""
		return m, tea.Batch(
			registerCmd(m.ctx, m.registrar, userID, m.wizard.Data()),
			m.spinner.Tick,
		)
	default:
		if _, err := m.wizard.Next(m.ctx); err != nil {
			m.notice = noticeFor(err)
			return m, nil
		}
		m.notice = ""
		m.focusRow(0)
		return m, nil
	}
}

func noticeFor(err error) string {
	if errors.Is(err, onboarding.ErrStepInvalid) {
		return "Please complete all required fields"
	}
	return err.Error()
}

func (m onboardingModel) View() string {
	var b strings.Builder
	step := m.wizard.Step()

	b.WriteString(titleStyle.Render(fmt.Sprintf("Step %d of %d: %s", step, onboarding.TotalSteps, stepTitles[step])))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(progressBar(m.wizard.Progress(), 40)))
	b.WriteString("\n\n")

	for i, row := range m.rows() {
		marker := "  "
		label := row.label
		if i == m.focus {
			marker = selectedStyle.Render("> ")
			label = selectedStyle.Render(label)
		}
		b.WriteString(marker + label + "\n")

		switch row.kind {
		case rowText:
			b.WriteString("  " + m.inputs[row.field].View() + "\n")
		case rowChoice:
			b.WriteString("  " + m.renderChoice(row, i == m.focus) + "\n")
		case rowMulti:
			b.WriteString(m.renderMulti(row, i == m.focus))
		}
		if msg := m.wizard.FieldError(row.field); msg != "" {
			b.WriteString("  " + errorStyle.Render(msg) + "\n")
		}
		b.WriteString("\n")
	}

	if step == onboarding.TotalSteps {
		b.WriteString(m.renderBMI())
	}

	switch m.wizard.State() {
	case onboarding.StateSubmitting:
		b.WriteString(m.spinner.View() + " Creating your profile...\n")
	case onboarding.StateSubmitFailed:
		b.WriteString(errorStyle.Render("Registration failed: "+m.wizard.SubmitError()) + "\n")
		b.WriteString(subtleStyle.Render("enter to retry") + "\n")
	}
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	}

	help := "tab/↑↓ move • ←→ choose • space toggle • enter next • esc back • ctrl+c quit"
	if step == onboarding.TotalSteps {
		help = "enter complete setup • esc back • ctrl+c quit"
	}
	b.WriteString("\n" + subtleStyle.Render(help))
	return b.String()
}

func (m onboardingModel) renderChoice(row formRow, focused bool) string {
	selected := m.fieldValue(row.field)
	parts := make([]string, 0, len(row.options))
	for i, opt := range row.options {
		text := opt.Label
		switch {
		case opt.Value == selected:
			text = okStyle.Render("(•) " + text)
		default:
			text = "( ) " + text
		}
		if focused && i == m.cursors[row.field] {
			text = selectedStyle.Render("[") + text + selectedStyle.Render("]")
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "  ")
}

func (m onboardingModel) renderMulti(row formRow, focused bool) string {
	d := m.wizard.Data()
	chosen := d.PreferredWorkoutTypes
	if row.field == onboarding.FieldFitnessGoals {
		chosen = d.FitnessGoals
	}

	var b strings.Builder
	for i, opt := range row.options {
		box := "[ ]"
		if slices.Contains(chosen, opt.Value) {
			box = okStyle.Render("[x]")
		}
		cursor := "  "
		if focused && i == m.cursors[row.field] {
			cursor = selectedStyle.Render("› ")
		}
		b.WriteString("  " + cursor + box + " " + opt.Label + "\n")
	}
	return b.String()
}

func (m onboardingModel) renderBMI() string {
	d := m.wizard.Data()
	current, goal := d.CurrentBMI(), d.GoalBMI()
	if current == nil && goal == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Your BMI") + "\n")
	if current != nil {
		b.WriteString(fmt.Sprintf("  Current: %.1f (%s)\n", current.Value, current.Category))
	}
	if goal != nil {
		b.WriteString(fmt.Sprintf("  Goal:    %.1f (%s)\n", goal.Value, goal.Category))
	}
	b.WriteString("\n")
	return b.String()
}
