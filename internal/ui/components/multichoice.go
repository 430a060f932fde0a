package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. It does not know the right
// answer until Reveal is called with the evaluated attempt.
type MultiChoice struct {
	Options      []string
	Selected     int
	Submitted    bool
	ChosenIndex  int
	CorrectIndex int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options:      options,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Update handles arrow navigation. It returns the 1-based option number
// the learner picked with Enter or a digit key, or 0.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, int) {
	if m.Submitted {
		return m, 0
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, 0
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		return m, m.Selected + 1
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= len(m.Options) {
			m.Selected = int(key[0] - '1')
			return m, m.Selected + 1
		}
	}
	return m, 0
}

// Reveal locks the component and marks the chosen and the correct option.
func (m *MultiChoice) Reveal(chosen, correct int) {
	m.Submitted = true
	m.ChosenIndex = chosen
	m.CorrectIndex = correct
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = theme.Correct
		case m.Submitted && i == m.ChosenIndex:
			style = theme.Incorrect
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
