// Package quiz is the screen that runs one quiz session.
package quiz

import (
	"context"
	"errors"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/lernwerk/vokabel/internal/router"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/screens/summary"
	sess "github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/ui/components"
	"github.com/lernwerk/vokabel/internal/ui/layout"
)

// answerCharLimit bounds the cloze input field.
const answerCharLimit = 64

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmQuit
	confirmDirection
)

// QuizScreen implements screen.Screen for an active quiz.
type QuizScreen struct {
	env     *screen.Env
	cfg     sess.Config
	session *sess.Session

	input  components.TextInput
	choice components.MultiChoice

	// last is the attempt of the locked question.
	last    *sess.Attempt
	confirm confirmKind
	notice  string
	errMsg  string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a QuizScreen for cfg. The session starts when the screen
// is initialized.
func New(env *screen.Env, cfg sess.Config) *QuizScreen {
	return &QuizScreen{
		env:   env,
		cfg:   cfg,
		input: components.NewTextInput("Type the missing word...", answerCharLimit),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.loadSession(), s.input.Init())
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) HandlesEscape() bool {
	return true
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.session == nil || s.errMsg != "" {
		return nil
	}
	if s.confirm != confirmNone {
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	}
	if s.session.Phase() == sess.PhaseLocked {
		return []layout.KeyHint{
			{Key: "any key", Description: "Next"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	if s.session.Mode() == sess.ModeMultipleChoice {
		hints = []layout.KeyHint{{Key: "1-4", Description: "Pick"}, {Key: "↑↓", Description: "Navigate"}}
	}
	return append(hints,
		layout.KeyHint{Key: "Tab", Description: "Switch direction"},
		layout.KeyHint{Key: "Esc", Description: "Quit"},
	)
}

// loadSession creates the session and fetches its pool off the UI loop.
func (s *QuizScreen) loadSession() tea.Cmd {
	cfg := s.cfg
	deps := s.env.SessionDeps()
	return func() tea.Msg {
		qs := sess.New(cfg, deps)
		if err := qs.Load(context.Background()); err != nil {
			return sessionLoadedMsg{Err: err}
		}
		return sessionLoadedMsg{Session: qs}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		return s.handleLoaded(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.acceptsTyping() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleLoaded(msg sessionLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describeLoadError(msg.Err)
		s.env.Logger.Warn("quiz failed to start", "course", s.cfg.Course.String(), "error", msg.Err)
		return s, nil
	}
	s.session = msg.Session
	if s.session.Finished() {
		return s, s.showSummary()
	}
	s.resetInputs()
	return s, nil
}

func describeLoadError(err error) string {
	var insufficient *sess.InsufficientDataError
	if errors.As(err, &insufficient) {
		if insufficient.Have == 0 {
			return "This course has no words yet."
		}
		return "This course has too few words for multiple choice."
	}
	return err.Error()
}

func (s *QuizScreen) acceptsTyping() bool {
	return s.session != nil &&
		s.confirm == confirmNone &&
		s.session.Phase() == sess.PhaseUnlocked &&
		s.session.Mode() == sess.ModeCloze
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.session == nil {
		if key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.confirm != confirmNone {
		return s.handleConfirmKey(key)
	}

	switch s.session.Phase() {
	case sess.PhaseLocked:
		if key == "esc" {
			s.confirm = confirmQuit
			return s, nil
		}
		return s.advance()

	case sess.PhaseUnlocked:
		switch key {
		case "esc":
			if len(s.session.Attempts()) == 0 {
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			s.confirm = confirmQuit
			return s, nil
		case "tab":
			return s.switchDirection()
		}

		if s.session.Mode() == sess.ModeMultipleChoice {
			var picked int
			s.choice, picked = s.choice.Update(msg)
			if picked > 0 {
				return s.submit(strconv.Itoa(picked))
			}
			return s, nil
		}

		if key == "enter" {
			return s.submit(s.input.Value())
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleConfirmKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "y", "Y":
		kind := s.confirm
		s.confirm = confirmNone
		if kind == confirmQuit {
			s.env.Logger.Info("quiz abandoned", "session_id", s.session.ID(), "answered", len(s.session.Attempts()))
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		err := s.session.ChangeDirection(context.Background(), s.session.Direction().Opposite(), true)
		if err != nil {
			s.notice = err.Error()
			return s, nil
		}
		s.resetInputs()
		return s, nil
	case "n", "N", "esc":
		s.confirm = confirmNone
	}
	return s, nil
}

// switchDirection flips the direction right away while nothing has been
// answered and asks for confirmation otherwise.
func (s *QuizScreen) switchDirection() (screen.Screen, tea.Cmd) {
	if !s.session.CanChangeDirection() {
		s.confirm = confirmDirection
		return s, nil
	}
	if err := s.session.ChangeDirection(context.Background(), s.session.Direction().Opposite(), false); err != nil {
		s.notice = err.Error()
		return s, nil
	}
	s.resetInputs()
	return s, nil
}

func (s *QuizScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	a, err := s.session.SubmitAnswer(context.Background(), answer)
	if err != nil {
		if errors.Is(err, sess.ErrInvalidChoice) {
			s.notice = "Pick one of the numbered options."
			return s, nil
		}
		s.notice = err.Error()
		return s, nil
	}
	s.notice = ""
	s.last = &a
	if s.session.Mode() == sess.ModeMultipleChoice {
		s.choice.Reveal(a.Chosen, a.CorrectIndex)
	} else {
		s.input.Submit(a.Correct)
	}
	return s, nil
}

func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	if err := s.session.Advance(context.Background()); err != nil {
		s.notice = err.Error()
		return s, nil
	}
	if s.session.Finished() {
		return s, s.showSummary()
	}
	s.resetInputs()
	return s, nil
}

// showSummary replaces the quiz with its summary. The summary can start a
// fresh quiz on the same course.
func (s *QuizScreen) showSummary() tea.Cmd {
	env, cfg := s.env, s.cfg
	cfg.Direction = s.session.Direction()
	sum := summary.New(sess.BuildSummary(s.session), func() screen.Screen {
		return New(env, cfg)
	})
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: sum}
	}
}

// resetInputs prepares the answer widgets for the current question.
func (s *QuizScreen) resetInputs() {
	s.last = nil
	s.notice = ""
	s.input.Reset()
	if q := s.session.Current(); q != nil && s.session.Mode() == sess.ModeMultipleChoice {
		s.choice = components.NewMultiChoice(q.Options)
	}
}
