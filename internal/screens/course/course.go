// Package course lets the learner pick grade, unit and station and the
// quiz options before a quiz starts.
package course

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/lernwerk/vokabel/internal/router"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/screens/quiz"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/ui/components"
	"github.com/lernwerk/vokabel/internal/ui/layout"
	"github.com/lernwerk/vokabel/internal/ui/theme"
	"github.com/lernwerk/vokabel/internal/vocab"
)

type step int

const (
	stepGrade step = iota
	stepUnit
	stepStation
	stepOptions
)

func (s step) label() string {
	switch s {
	case stepGrade:
		return "Grade"
	case stepUnit:
		return "Unit"
	case stepStation:
		return "Station"
	default:
		return "Options"
	}
}

type listLoadedMsg struct {
	step  step
	items []int
	err   error
}

const (
	optMode = iota
	optDirection
	optStart
)

// CourseScreen walks through grade, unit and station, then the options.
type CourseScreen struct {
	env      *screen.Env
	step     step
	items    []int
	selected int
	loading  bool
	errMsg   string

	course    vocab.Course
	mode      session.Mode
	direction vocab.Direction
	option    int
}

var _ screen.Screen = (*CourseScreen)(nil)
var _ screen.KeyHintProvider = (*CourseScreen)(nil)
var _ screen.EscapeHandler = (*CourseScreen)(nil)

// New creates a new CourseScreen preset to the configured mode and
// direction.
func New(env *screen.Env) *CourseScreen {
	mode := env.Mode
	if mode == "" {
		mode = session.ModeCloze
	}
	return &CourseScreen{env: env, mode: mode, direction: env.Direction, loading: true}
}

func (c *CourseScreen) Init() tea.Cmd {
	return c.load(stepGrade)
}

func (c *CourseScreen) Title() string {
	return "Choose a course"
}

func (c *CourseScreen) HandlesEscape() bool {
	return c.step > stepGrade
}

func (c *CourseScreen) KeyHints() []layout.KeyHint {
	if c.step == stepOptions {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "←→", Description: "Change"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

// load fetches the choices of step s for the course picked so far.
func (c *CourseScreen) load(s step) tea.Cmd {
	words := c.env.Words
	course := c.course
	return func() tea.Msg {
		ctx := context.Background()
		var (
			items []int
			err   error
		)
		switch s {
		case stepGrade:
			items, err = words.Grades(ctx)
		case stepUnit:
			items, err = words.Units(ctx, course.Grade)
		case stepStation:
			items, err = words.Stations(ctx, course.Grade, course.Unit)
		}
		return listLoadedMsg{step: s, items: items, err: err}
	}
}

func (c *CourseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		if msg.step != c.step {
			return c, nil
		}
		c.loading = false
		if msg.err != nil {
			c.errMsg = msg.err.Error()
			return c, nil
		}
		c.errMsg = ""
		c.items = msg.items
		c.selected = 0
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg.String())
	}
	return c, nil
}

func (c *CourseScreen) handleKey(key string) (screen.Screen, tea.Cmd) {
	if key == "esc" {
		return c.back()
	}
	if c.step == stepOptions {
		return c.handleOptionKey(key)
	}
	if c.loading {
		return c, nil
	}

	switch key {
	case "up", "k":
		if c.selected > 0 {
			c.selected--
		}
	case "down", "j":
		if c.selected < len(c.items)-1 {
			c.selected++
		}
	case "enter":
		if len(c.items) == 0 {
			return c, nil
		}
		v := c.items[c.selected]
		switch c.step {
		case stepGrade:
			c.course.Grade = v
		case stepUnit:
			c.course.Unit = v
		case stepStation:
			c.course.Station = v
		}
		c.step++
		if c.step == stepOptions {
			c.option = optStart
			return c, nil
		}
		c.loading = true
		c.items = nil
		return c, c.load(c.step)
	}
	return c, nil
}

func (c *CourseScreen) handleOptionKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		if c.option > optMode {
			c.option--
		}
	case "down", "j":
		if c.option < optStart {
			c.option++
		}
	case "left", "right", "h", "l", "space", " ":
		c.toggle()
	case "enter":
		if c.option != optStart {
			c.toggle()
			return c, nil
		}
		cfg := session.Config{Course: c.course, Mode: c.mode, Direction: c.direction}
		return c, func() tea.Msg {
			return router.PushScreenMsg{Screen: quiz.New(c.env, cfg)}
		}
	}
	return c, nil
}

func (c *CourseScreen) toggle() {
	switch c.option {
	case optMode:
		if c.mode == session.ModeCloze {
			c.mode = session.ModeMultipleChoice
		} else {
			c.mode = session.ModeCloze
		}
	case optDirection:
		c.direction = c.direction.Opposite()
	}
}

// back returns to the previous step, or leaves the screen from the first.
func (c *CourseScreen) back() (screen.Screen, tea.Cmd) {
	if c.step == stepGrade {
		return c, func() tea.Msg { return router.PopScreenMsg{} }
	}
	c.step--
	if c.step == stepOptions-1 {
		c.course.Station = 0
	}
	c.loading = true
	c.items = nil
	return c, c.load(c.step)
}

func (c *CourseScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(c.breadcrumb())
	b.WriteString("\n\n")

	switch {
	case c.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + c.errMsg))
	case c.step == stepOptions:
		b.WriteString(c.renderOptions(cw))
	case c.loading:
		b.WriteString(theme.Hint.Render("Loading..."))
	case len(c.items) == 0:
		b.WriteString(theme.Hint.Render("Nothing to choose here."))
	default:
		labels := make([]string, len(c.items))
		for i, v := range c.items {
			labels[i] = fmt.Sprintf("%s %d", c.step.label(), v)
		}
		b.WriteString(components.ArcadeMenu(labels, c.selected, nil, cw, layout.IsCompactHeight(height)))
	}

	return components.CabinetFrame(b.String(), width, height)
}

func (c *CourseScreen) breadcrumb() string {
	parts := []string{}
	if c.step > stepGrade {
		parts = append(parts, fmt.Sprintf("Grade %d", c.course.Grade))
	}
	if c.step > stepUnit {
		parts = append(parts, fmt.Sprintf("Unit %d", c.course.Unit))
	}
	if c.step > stepStation {
		parts = append(parts, fmt.Sprintf("Station %d", c.course.Station))
	}
	head := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).Render("Choose " + strings.ToLower(c.step.label()))
	if c.step == stepOptions {
		head = lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true).Render("Ready?")
	}
	if len(parts) == 0 {
		return head
	}
	return head + "\n" + theme.Hint.Render(strings.Join(parts, " › "))
}

func (c *CourseScreen) renderOptions(cw int) string {
	modeLabel := "Cloze (type the word)"
	if c.mode == session.ModeMultipleChoice {
		modeLabel = "Multiple choice"
	}
	labels := []string{
		"Mode: " + modeLabel,
		"Direction: " + c.direction.String(),
		"START",
	}
	return components.ArcadeMenu(labels, c.option, nil, cw, true)
}
