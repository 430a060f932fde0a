package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/ui/components"
	"github.com/lernwerk/vokabel/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.session == nil:
		return renderLoading(width)
	case s.confirm == confirmQuit:
		return renderConfirm(width, "End this quiz?", "Answers so far will not be saved.", "[Y] Yes, stop", "[N] No, keep going")
	case s.confirm == confirmDirection:
		return renderConfirm(width, "Switch direction?", "The quiz starts over with the words shuffled again.", "[Y] Yes, restart", "[N] No, keep going")
	}
	return s.renderQuestion(width)
}

// renderQuestion renders the current question and, once it is locked,
// the feedback for the given answer.
func (s *QuizScreen) renderQuestion(width int) string {
	qs := s.session
	q := qs.Current()
	if q == nil {
		return renderLoading(width)
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Course %s  %s", qs.Course(), qs.Mode().Tag(qs.Direction())))
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s %d", lipgloss.NewStyle().Foreground(theme.Success).Render("✓"), qs.Correct()))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	bar := components.NewProgressBar("", qs.Index(), qs.Total(), qs.Progress(), max(width-8, 10))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	prompt := q.Prompt
	if qs.Mode() == sess.ModeMultipleChoice {
		prompt = fmt.Sprintf("What does **%s** mean?", q.Prompt)
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(components.RenderPrompt(prompt)))
	b.WriteString("\n\n")

	if qs.Mode() == sess.ModeMultipleChoice {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("Answer: " + s.input.View()))
	}
	b.WriteString("\n")

	if s.last != nil {
		b.WriteString("\n")
		b.WriteString(renderFeedback(width, *s.last))
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render(s.notice))
	}
	return b.String()
}

func renderFeedback(width int, a sess.Attempt) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder
	if a.Correct {
		b.WriteString(center.Inherit(theme.Correct).Render("Richtig!"))
	} else {
		b.WriteString(center.Inherit(theme.Incorrect).Render("Not quite"))
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.TextDim).Render("Correct answer: " + a.Canonical))
	}
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.TextDim).Render("Press any key to continue..."))
	return b.String()
}

func renderConfirm(width int, title, detail, yes, no string) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center.Foreground(theme.Text).Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(detail))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.Success).Render(yes))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Primary).Render(no))
	return b.String()
}

func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Shuffling the words...")
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg))
}
