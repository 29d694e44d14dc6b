package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/2beens/wellnesscoach/internal/widgets"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	playerTickInterval = 250 * time.Millisecond
	playerLoadDelay    = 300 * time.Millisecond
	seekStep           = 0.1
)

// clip lengths in seconds of the bundled demo videos
var videoDurations = map[string]float64{
	"Push-ups": 32,
	"Pull-ups": 41,
	"Boxing":   58,
}

// simPlayback stands in for a media element. The terminal cannot decode the
// clips so time is advanced by ticks while playing.
type simPlayback struct {
	playing  bool
	muted    bool
	position float64
}

func (p *simPlayback) Play() error {
	p.playing = true
	return nil
}

func (p *simPlayback) Pause()              { p.playing = false }
func (p *simPlayback) SetMuted(muted bool) { p.muted = muted }
func (p *simPlayback) Seek(seconds float64) {
	p.position = seconds
}

type playerModel struct {
	choices []string
	cursor  int

	player   *widgets.Player
	playback *simPlayback
	// bumped on every open so ticks of a closed player are ignored
	session int
	err     string
}

func newPlayerModel() playerModel {
	// Squats has no clip and shows the unavailable message
	choices := append(widgets.Exercises(), "Squats")
	return playerModel{choices: choices}
}

func (m playerModel) open() bool {
	return m.player != nil
}

func (m playerModel) load(exercise string) (playerModel, tea.Cmd) {
	m.session++
	m.err = ""
	playback := &simPlayback{}
	player, err := widgets.NewPlayer(exercise, playback)
	if err != nil {
		m.player, m.playback = nil, nil
		m.err = err.Error()
		return m, nil
	}
	m.player, m.playback = player, playback

	session, duration := m.session, videoDurations[exercise]
	return m, tea.Tick(playerLoadDelay, func(time.Time) tea.Msg {
		return metadataLoadedMsg{session: session, duration: duration}
	})
}

func (m playerModel) close() playerModel {
	if m.player != nil && m.player.Playing() {
		m.player.TogglePlay()
	}
	m.session++
	m.player, m.playback = nil, nil
	return m
}

func (m playerModel) tick() tea.Cmd {
	session := m.session
	return tea.Tick(playerTickInterval, func(time.Time) tea.Msg {
		return playerTickMsg{session: session}
	})
}

func (m playerModel) Update(msg tea.Msg) (playerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case metadataLoadedMsg:
		if msg.session != m.session || m.player == nil {
			return m, nil
		}
		m.player.MetadataLoaded(msg.duration)
		return m, nil
	case playerTickMsg:
		if msg.session != m.session || m.player == nil || !m.player.Playing() {
			return m, nil
		}
		t := m.player.CurrentTime() + playerTickInterval.Seconds()
		if t >= m.player.Duration() {
			m.player.TimeUpdate(m.player.Duration())
			m.player.Ended()
			m.playback.Pause()
			return m, nil
		}
		m.playback.position = t
		m.player.TimeUpdate(t)
		return m, m.tick()
	case tea.KeyMsg:
		if m.player == nil {
			switch msg.String() {
			case "up", "k":
				m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
			case "down", "j":
				m.cursor = (m.cursor + 1) % len(m.choices)
			case "enter":
				return m.load(m.choices[m.cursor])
			}
			return m, nil
		}
		return m.handlePlayerKey(msg)
	}
	return m, nil
}

func (m playerModel) handlePlayerKey(msg tea.KeyMsg) (playerModel, tea.Cmd) {
	if m.player.Loading() {
		return m, nil
	}
	switch msg.String() {
	case " ":
		wasPlaying := m.player.Playing()
		if !wasPlaying && m.player.CurrentTime() >= m.player.Duration() {
			m.player.Restart()
		}
		m.player.TogglePlay()
		if !wasPlaying && m.player.Playing() {
			// new session so a tick still queued from before the pause is dropped
			m.session++
			return m, m.tick()
		}
	case "m":
		m.player.ToggleMute()
	case "left":
		m.player.SeekFraction(m.player.Progress() - seekStep)
	case "right":
		m.player.SeekFraction(m.player.Progress() + seekStep)
	case "r":
		m.player.Restart()
	}
	return m, nil
}

func (m playerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Exercise Videos") + "\n\n")

	if m.player == nil {
		for i, name := range m.choices {
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("› "+name) + "\n")
			} else {
				b.WriteString("  " + name + "\n")
			}
		}
		if m.err != "" {
			b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
		}
		b.WriteString("\n" + subtleStyle.Render("↑↓ choose • enter play • esc back"))
		return b.String()
	}

	p := m.player
	b.WriteString(selectedStyle.Render(p.Exercise()) + subtleStyle.Render("  "+p.Src()) + "\n\n")
	if p.Loading() {
		b.WriteString(subtleStyle.Render("Loading...") + "\n")
	} else {
		state := "▶ playing"
		if !p.Playing() {
			state = "⏸ paused"
		}
		sound := "🔊"
		if p.Muted() {
			sound = "🔇"
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s / %s\n",
			state, sound, widgets.FormatTime(p.CurrentTime()), widgets.FormatTime(p.Duration())))
		b.WriteString(progressBar(p.Progress(), 40) + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render("space play/pause • m mute • ←→ seek • r restart • esc close"))
	return b.String()
}
