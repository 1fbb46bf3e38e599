package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Faultbox/physview/internal/panel"
)

// chordFor maps a terminal key to the panel chord with the same meaning.
func chordFor(msg tea.KeyMsg) (panel.Chord, bool) {
	switch msg.Type {
	case tea.KeyF1:
		return panel.Chord{Key: panel.KeyF1}, true
	case tea.KeySpace:
		return panel.Chord{Key: panel.KeySpace}, true
	case tea.KeyBackspace:
		return panel.Chord{Key: panel.KeyBackspace}, true
	case tea.KeyEsc:
		return panel.Chord{Key: panel.KeyEscape}, true
	}

	s := msg.String()
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok && len(rest) == 1 {
		return panel.Chord{Key: strings.ToUpper(rest), Ctrl: true}, true
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt {
		return panel.Chord{Key: strings.ToUpper(string(msg.Runes))}, true
	}
	return panel.Chord{}, false
}
