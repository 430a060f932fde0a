package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/router"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/screens/course"
	"github.com/lernwerk/vokabel/internal/screens/history"
	"github.com/lernwerk/vokabel/internal/screens/notice"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/ui/components"
	"github.com/lernwerk/vokabel/internal/ui/theme"
)

type statsLoadedMsg struct {
	stats stats
	err   error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	env    *screen.Env
	menu   components.Menu
	stats  stats
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ router.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env *screen.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "START QUIZ", Action: h.startQuiz},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(env)} }
		}},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) startQuiz() tea.Cmd {
	var next screen.Screen = course.New(h.env)
	if h.stats.loaded && len(h.stats.grades) == 0 {
		next = notice.New("No words yet",
			"The word bank is empty.\n\nImport a word list with\n`vokabel words import <file.csv>`\nor `vokabel words sync <repo>`.")
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume refreshes the stats after a quiz.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	env := h.env
	return func() tea.Msg {
		ctx := context.Background()
		var st stats
		grades, err := env.Words.Grades(ctx)
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		st.grades = grades
		if env.User.ID != "" {
			results, err := env.Results.ListResults(ctx, store.ResultFilter{UserID: env.User.ID, Limit: 1})
			if err != nil {
				return statsLoadedMsg{err: err}
			}
			if len(results) > 0 {
				st.last = &results[0]
			}
		}
		st.loaded = true
		return statsLoadedMsg{stats: st}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.err != nil {
			h.env.Logger.Error("load home stats", "error", msg.err)
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.stats = msg.stats
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer.
	compact := height+8 < 30 || width < 100
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(RenderMascot(mascotFor(h.stats))))
	}
	sections = append(sections, renderStatsBar(h.stats, cw, compact))
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.Error).Render(h.errMsg))
	}
	sections = append(sections, components.ArcadeMenu(h.menu.Labels(), h.menu.Selected, h.menu.DisabledSet(), cw, compact))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
