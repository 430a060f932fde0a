package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/ui/theme"
)

// Terminal size limits. Below MinWidth x MinHeight the app only shows a
// resize notice; below the compact height the screens drop decoration.
const (
	MinWidth      = 80
	MinHeight     = 24
	CompactHeight = 30
)

const brand = "Vokabel"

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactHeight(height int) bool { return height < CompactHeight }

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("%s needs a bigger window.\n\nat least %d x %d, now %d x %d",
		brand, MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader shows the brand on the left, the screen title in the
// middle and the signed-in learner on the right.
func RenderHeader(title, learner string, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + brand)
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := ""
	if learner != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render("● "+learner) + " "
	}

	// Border takes two columns, the frame padding two more.
	inner := max(width-4, 0)
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(right)
	gapL := max((inner-mw)/2-lw, 1)
	gapR := max(inner-lw-gapL-mw-rw, 1)

	return bar(width).Render(left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right)
}

// RenderFooter lists the key hints of the active screen.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar(width).Render(b.String())
}

// RenderFrame stacks header, content and footer so that the content
// fills the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).Render(content),
		footer,
	)
}
