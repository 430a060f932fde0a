package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for all arcade sections.
func ContentWidth(frameWidth int) int {
	// Leave room for cabinet border (2) + inner padding (4)
	return min(max(frameWidth-6, 20), 60)
}

// CabinetFrame wraps content in a double-border frame, centered in the
// given dimensions.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ArcadeCard wraps content in a rounded-border card at the given content width.
func ArcadeCard(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// ArcadeMenu renders items as fixed-width buttons, or as plain lines when
// compact.
func ArcadeMenu(items []string, selected int, disabled map[int]bool, cw int, compact bool) string {
	base := lipgloss.NewStyle().Align(lipgloss.Center)
	if !compact {
		base = base.Width(buttonWidth).Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1)
	}

	lines := make([]string, 0, len(items))
	for i, label := range items {
		switch {
		case disabled[i]:
			lines = append(lines, base.Foreground(theme.TextDim).Render(label))
		case i == selected:
			lines = append(lines, base.
				Bold(true).
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				BorderForeground(theme.ArcadeYellow).
				Render("▸ "+label))
		default:
			lines = append(lines, base.Foreground(theme.Text).Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// RenderPrompt renders a prompt, highlighting its **emphasized** spans.
func RenderPrompt(prompt string) string {
	parts := strings.Split(prompt, "**")
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 && i < len(parts)-1 {
			b.WriteString(theme.Emphasis.Render(p))
			continue
		}
		if i%2 == 1 {
			p = "**" + p
		}
		b.WriteString(theme.Body.Bold(true).Render(p))
	}
	return b.String()
}
