package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/router"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/ui/layout"
	"github.com/lernwerk/vokabel/internal/ui/theme"
)

// NoticeScreen shows a message and returns on any key.
type NoticeScreen struct {
	title string
	body  string
}

var _ screen.Screen = (*NoticeScreen)(nil)

// New creates a new NoticeScreen.
func New(title, body string) *NoticeScreen {
	return &NoticeScreen{title: title, body: body}
}

func (n *NoticeScreen) Init() tea.Cmd {
	return nil
}

func (n *NoticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return n, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return n, nil
}

func (n *NoticeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "any key", Description: "Back"}}
}

func (n *NoticeScreen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ " + n.title + " ╌╌\n\n" + n.body)
}

func (n *NoticeScreen) Title() string {
	return n.title
}
