// Package history lists past quiz results. Administrators can page
// through the results of every learner.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/router"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/ui/layout"
	"github.com/lernwerk/vokabel/internal/ui/theme"
	"github.com/lernwerk/vokabel/internal/vocab"
)

// resultLimit is the number of results loaded per learner.
const resultLimit = 50

type learner struct {
	id    string
	label string
}

type historyLoadedMsg struct {
	Learners []learner
	Courses  []vocab.Course
	Results  []session.Result
	Err      error
}

// HistoryScreen displays past quiz results.
type HistoryScreen struct {
	env      *screen.Env
	learners []learner
	current  int

	// courses are the courses the current learner has results for.
	// filter indexes them; -1 shows every course.
	courses []vocab.Course
	filter  int

	results  []session.Result
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen for the signed-in learner.
func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		filter:   -1,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load(-1)
}

// load fetches the courses and results of learners[idx], narrowed to
// the selected course. A negative idx loads the learner list first and
// starts at the signed-in user.
func (s *HistoryScreen) load(idx int) tea.Cmd {
	env := s.env
	learners := s.learners
	var course vocab.Course
	if s.filter >= 0 && s.filter < len(s.courses) {
		course = s.courses[s.filter]
	}
	return func() tea.Msg {
		ctx := context.Background()

		if idx < 0 {
			learners = []learner{{id: env.User.ID, label: userLabel(env.User.Email, env.User.Name)}}
			idx = 0
			if env.User.Admin && env.Profiles != nil {
				profiles, err := env.Profiles.ListProfiles(ctx)
				if err != nil {
					return historyLoadedMsg{Err: err}
				}
				for _, p := range profiles {
					if p.ID == env.User.ID {
						continue
					}
					learners = append(learners, learner{id: p.ID, label: userLabel(p.Email, p.FullName)})
				}
			}
		}

		userID := learners[idx].id
		courses, err := env.Results.ResultCourses(ctx, userID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		results, err := env.Results.ListResults(ctx, store.ResultFilter{
			UserID:  userID,
			Grade:   course.Grade,
			Unit:    course.Unit,
			Station: course.Station,
			Limit:   resultLimit,
		})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Learners: learners, Courses: courses, Results: results}
	}
}

func userLabel(email, name string) string {
	if name != "" {
		return fmt.Sprintf("%s <%s>", name, email)
	}
	if email == "" {
		return "local learner"
	}
	return email
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
	}
	if len(s.courses) > 1 {
		hints = append(hints, layout.KeyHint{Key: "F", Description: "Course filter"})
	}
	if len(s.learners) > 1 {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Next learner"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.learners = msg.Learners
			s.courses = msg.Courses
			s.results = msg.Results
			s.errMsg = ""
		}
		s.selected = 0
		s.expanded = make(map[int]bool)
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "tab":
			if len(s.learners) < 2 {
				return s, nil
			}
			s.current = (s.current + 1) % len(s.learners)
			s.filter = -1
			s.loaded = false
			return s, s.load(s.current)
		case "f", "F":
			if len(s.courses) < 2 {
				return s, nil
			}
			// -1, 0, ..., len-1, then back to every course.
			s.filter++
			if s.filter >= len(s.courses) {
				s.filter = -1
			}
			s.loaded = false
			return s, s.load(s.current)
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")
	if len(s.learners) > 1 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.ArcadeCyan).Bold(true).
			Render(fmt.Sprintf("%s  (%d/%d)", s.learners[s.current].label, s.current+1, len(s.learners))))
		b.WriteString("\n\n")
	}

	if len(s.results) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("  No quizzes yet. Start practicing!"))
		return b.String()
	}

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("%s  ·  %s", s.filterLabel(), session.Overview(s.results))))
	b.WriteString("\n\n")

	for i, r := range s.results {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  Course %s  %d/%d  %3d%%",
			prefix, r.CreatedAt.Local().Format("Jan 02, 2006"), r.Course, r.Correct, r.Total, r.Percent)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s  mode %s  %s", r.CreatedAt.Local().Format("15:04"), r.Mode, r.UserEmail)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *HistoryScreen) filterLabel() string {
	if s.filter < 0 || s.filter >= len(s.courses) {
		return "All courses"
	}
	return "Course " + s.courses[s.filter].String()
}
