package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar with a caption such as
// "3 / 12" to its right.
type ProgressBar struct {
	Label   string
	Done    int
	Total   int
	Caption string
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, done, total int, caption string, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, Caption: caption, Width: width}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	caption := p.Caption
	if caption == "" && p.Total > 0 {
		caption = fmt.Sprintf("%d / %d", p.Done, p.Total)
	}
	captionWidth := 0
	if caption != "" {
		captionWidth = lipgloss.Width(caption) + 2
	}

	barWidth := max(p.Width-lipgloss.Width(result)-captionWidth, 4)
	filled := 0
	if p.Total > 0 {
		filled = min(max(barWidth*p.Done/p.Total, 0), barWidth)
	}

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if caption != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + caption)
	}
	return result
}
