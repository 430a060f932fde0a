// Package summary shows the score of a finished quiz and the words that
// were answered wrong.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/router"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/ui/layout"
	"github.com/lernwerk/vokabel/internal/ui/theme"
	"github.com/lernwerk/vokabel/internal/vocab"
)

// maxReviewLines caps the list of wrong answers.
const maxReviewLines = 8

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary *session.Summary
	again   func() screen.Screen
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeHandler = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. again builds the screen for another
// round on the same course; it may be nil.
func New(summary *session.Summary, again func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{summary: summary, again: again}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) HandlesEscape() bool {
	return true
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	if s.again != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Play again"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "r", "R":
			if s.again == nil {
				return s, nil
			}
			next := s.again()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder

	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(headline(sum.Percent)))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center.Foreground(theme.TextDim).Render(
		fmt.Sprintf("Course %s  %s  %d:%02d", sum.Course, sum.Mode.Tag(sum.Direction), mins, secs)))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.Text).Render(
		fmt.Sprintf("Words: %d        Correct: %d        Score: %d%%", sum.Total, sum.Correct, sum.Percent)))
	b.WriteString("\n")

	if sum.PersistErr != nil {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Error).Render("The result could not be saved: " + sum.PersistErr.Error()))
		b.WriteString("\n")
	}

	wrong := sum.Wrong()
	if len(wrong) == 0 {
		return b.String()
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("To practice")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for i, a := range wrong {
		if i == maxReviewLines {
			b.WriteString(center.Foreground(theme.TextDim).Render(fmt.Sprintf("... and %d more", len(wrong)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(center.Render(reviewLine(a)))
		b.WriteString("\n")
	}
	return b.String()
}

func headline(percent int) string {
	switch {
	case percent == 100:
		return "Perfect!"
	case percent >= 80:
		return "Great job!"
	case percent >= 50:
		return "Quiz complete!"
	default:
		return "Keep practicing!"
	}
}

// reviewLine renders a wrong attempt as "shown → expected (given)".
func reviewLine(a session.Attempt) string {
	shown, expected := a.Target, a.Source
	if a.Direction == vocab.SourceToTarget {
		shown, expected = a.Source, a.Target
	}
	given := a.Answer
	if strings.TrimSpace(given) == "" {
		given = "no answer"
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render(shown+" → ") +
		theme.Correct.Render(expected) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(" (you: ") +
		theme.Incorrect.Render(given) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(")")
}
