package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/ui/theme"
)

const arcadeTitleFull = `██╗   ██╗ ██████╗ ██╗  ██╗ █████╗ ██████╗ ███████╗██╗
██║   ██║██╔═══██╗██║ ██╔╝██╔══██╗██╔══██╗██╔════╝██║
██║   ██║██║   ██║█████╔╝ ███████║██████╔╝█████╗  ██║
╚██╗ ██╔╝██║   ██║██╔═██╗ ██╔══██║██╔══██╗██╔══╝  ██║
 ╚████╔╝ ╚██████╔╝██║  ██╗██║  ██║██████╔╝███████╗███████╗
  ╚═══╝   ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚══════╝╚══════╝`

const arcadeTitleCompact = "V · O · K · A · B · E · L"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(title))
}

// renderStatsBar renders the word bank size and the last result in a
// double-bordered box matching the content width.
func renderStatsBar(st stats, cw int, compact bool) string {
	gradeStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	lastStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var grades, last string
	if compact {
		grades = gradeStyle.Render(fmt.Sprintf("▤%d", len(st.grades)))
	} else {
		grades = gradeStyle.Render(fmt.Sprintf("▤ %d GRADES", len(st.grades)))
	}
	switch {
	case st.last == nil && compact:
		last = dim.Render("✎–")
	case st.last == nil:
		last = dim.Render("✎ NO QUIZ YET")
	case compact:
		last = lastStyle.Render(fmt.Sprintf("✎%d%%", st.last.Percent))
	default:
		last = lastStyle.Render(fmt.Sprintf("✎ LAST %s %d%%", st.last.Course, st.last.Percent))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(grades + "  " + last)
}

// mascotFor picks the mascot mood from the home stats.
func mascotFor(st stats) MascotVariant {
	switch {
	case st.loaded && len(st.grades) == 0:
		return MascotAlert
	case st.last != nil && st.last.Percent >= celebrateAt:
		return MascotCelebrating
	}
	return MascotIdle
}

// celebrateAt is the last-result percentage that makes the mascot cheer.
const celebrateAt = 80

type stats struct {
	loaded bool
	grades []int
	last   *session.Result
}
