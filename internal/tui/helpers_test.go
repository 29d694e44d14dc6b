package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/2beens/wellnesscoach/internal/onboarding"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var specialKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	" ":         tea.KeySpace,
	"ctrl+c":    tea.KeyCtrlC,
	"ctrl+v":    tea.KeyCtrlV,
	"ctrl+x":    tea.KeyCtrlX,
}

func key(k string) tea.KeyMsg {
	if kt, ok := specialKeys[k]; ok {
		if kt == tea.KeySpace {
			return tea.KeyMsg{Type: kt, Runes: []rune{' '}}
		}
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// collect runs cmd and the commands of any batch it returns.
// Only use it on commands that do not sleep.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, collect(c)...)
	}
	return msgs
}

func findMsg[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if found, ok := msg.(T); ok {
			return found
		}
	}
	var zero T
	require.Failf(t, "message not found", "%T not in %v", zero, msgs)
	return zero
}

type testRegistrar struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (r *testRegistrar) Register(_ context.Context, userID string, _ onboarding.Data) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, userID)
	return r.err
}
