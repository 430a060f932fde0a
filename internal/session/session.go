package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lernwerk/vokabel/internal/vocab"
)

// Config selects what a session quizzes.
type Config struct {
	Course    vocab.Course
	Mode      Mode
	Direction vocab.Direction
}

// Deps are the collaborators of a session. Loader and Recorder are needed
// for a full run; the others are optional.
type Deps struct {
	Loader   PoolLoader
	Recorder ResultRecorder
	Users    UserLookup
	Stats    AttemptRecorder
	Logger   *slog.Logger
	Rand     *rand.Rand
	Now      func() time.Time
}

// Session is the state machine of one quiz run. It is not safe for
// concurrent use; a single owner drives every transition.
type Session struct {
	id        string
	course    vocab.Course
	mode      Mode
	direction vocab.Direction

	loader   PoolLoader
	recorder ResultRecorder
	users    UserLookup
	stats    AttemptRecorder
	log      *slog.Logger
	rng      *rand.Rand
	now      func() time.Time

	user  User
	pool  map[string]vocab.WordEntry
	words []vocab.WordEntry
	order []string

	index    int
	current  *Question
	attempts []Attempt
	correct  int
	phase    Phase

	startedAt       time.Time
	resultPersisted bool
	result          *Result
	persistErr      error

	observers    map[int]func(Snapshot)
	nextObserver int
}

// New creates a session in PhaseLoading. Call Load, or Initialize with a
// pool obtained elsewhere, to start it.
func New(cfg Config, deps Deps) *Session {
	if cfg.Mode == "" {
		cfg.Mode = ModeCloze
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	id := uuid.New().String()
	return &Session{
		id:        id,
		course:    cfg.Course,
		mode:      cfg.Mode,
		direction: cfg.Direction,
		loader:    deps.Loader,
		recorder:  deps.Recorder,
		users:     deps.Users,
		stats:     deps.Stats,
		log:       deps.Logger.With("session_id", id),
		rng:       deps.Rand,
		now:       deps.Now,
		phase:     PhaseLoading,
		observers: make(map[int]func(Snapshot)),
	}
}

// Load resolves the current user and fetches the pool, then initializes
// the session. Collaborator failures are returned as *FetchError.
func (s *Session) Load(ctx context.Context) error {
	if s.phase != PhaseLoading {
		return &InvalidTransitionError{Op: "load", Phase: s.phase}
	}
	if s.users != nil {
		u, err := s.users.CurrentUser(ctx)
		if err != nil {
			return &FetchError{Op: "look up current user", Err: err}
		}
		s.user = u
	}
	if s.loader == nil {
		return &FetchError{Op: "fetch pool", Err: errors.New("no pool loader configured")}
	}
	pool, err := s.loader.FetchPool(ctx, s.course)
	if err != nil {
		return &FetchError{Op: "fetch pool", Err: err}
	}
	return s.Initialize(ctx, pool)
}

// Initialize starts the session on pool. Entries without both terms and
// repeated ids are dropped. A pool below the mode's minimum yields
// *InsufficientDataError and leaves the session unchanged.
func (s *Session) Initialize(ctx context.Context, pool []vocab.WordEntry) error {
	words := make([]vocab.WordEntry, 0, len(pool))
	byID := make(map[string]vocab.WordEntry, len(pool))
	for _, w := range pool {
		if !w.Usable() {
			s.log.Warn("skipping unusable word", "word_id", w.ID, "course", s.course.String())
			continue
		}
		if _, dup := byID[w.ID]; dup {
			continue
		}
		byID[w.ID] = w
		words = append(words, w)
	}
	if need := s.mode.MinPool(); len(words) < need {
		return &InsufficientDataError{Mode: s.mode, Have: len(words), Need: need}
	}

	s.pool = byID
	s.words = words
	s.reset()
	s.log.Info("session started",
		"course", s.course.String(),
		"mode", string(s.mode),
		"direction", s.direction.String(),
		"words", len(words),
	)
	_, err := s.buildCurrent(ctx)
	return err
}

// reset reshuffles the order and clears everything derived from answers.
func (s *Session) reset() {
	s.order = make([]string, len(s.words))
	for i, w := range s.words {
		s.order[i] = w.ID
	}
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.index = 0
	s.current = nil
	s.attempts = nil
	s.correct = 0
	s.resultPersisted = false
	s.result = nil
	s.persistErr = nil
	s.startedAt = s.now()
	s.phase = PhaseUnlocked
}

// BuildCurrentQuestion returns the question at the current position,
// building it if needed. It returns nil once the session is finished.
func (s *Session) BuildCurrentQuestion(ctx context.Context) (*Question, error) {
	switch s.phase {
	case PhaseLoading, PhaseLocked:
		return nil, &InvalidTransitionError{Op: "build question", Phase: s.phase}
	case PhaseFinished:
		return nil, nil
	}
	if s.current != nil && s.current.Index == s.index {
		return s.current, nil
	}
	return s.buildCurrent(ctx)
}

func (s *Session) buildCurrent(ctx context.Context) (*Question, error) {
	for s.index < len(s.order) {
		id := s.order[s.index]
		word, ok := s.pool[id]
		if ok {
			s.current = s.newQuestion(word)
			s.phase = PhaseUnlocked
			s.publish()
			return s.current, nil
		}
		// Order and pool come from the same snapshot, so this points at a
		// bug upstream.
		s.log.Warn("unexpected: word missing from pool, skipping", "word_id", id, "index", s.index)
		s.index++
	}
	s.finish(ctx)
	return nil, nil
}

func (s *Session) newQuestion(w vocab.WordEntry) *Question {
	raw := vocab.ExpectedAnswer(w, s.direction)
	q := &Question{
		Index:     s.index,
		Word:      w,
		Solutions: vocab.ExpandSolutions(raw),
		Canonical: vocab.PrimarySolution(raw),
	}
	if s.mode == ModeMultipleChoice {
		q.Prompt = strings.TrimSpace(vocab.QuestionText(w, s.direction))
		q.Options, q.CorrectIndex = s.choices(w)
	} else {
		q.Prompt = vocab.BuildPrompt(w, s.direction)
	}
	return q
}

// choices returns the shuffled options for w and the index of the right
// one. Distractors are drawn from the rest of the pool.
func (s *Session) choices(w vocab.WordEntry) ([]string, int) {
	others := make([]vocab.WordEntry, 0, len(s.words))
	for _, o := range s.words {
		if o.ID != w.ID {
			others = append(others, o)
		}
	}
	s.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	if len(others) > choiceCount-1 {
		others = others[:choiceCount-1]
	}

	answer := strings.TrimSpace(vocab.ExpectedAnswer(w, s.direction))
	options := make([]string, 0, choiceCount)
	options = append(options, answer)
	for _, o := range others {
		options = append(options, strings.TrimSpace(vocab.ExpectedAnswer(o, s.direction)))
	}
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, slices.Index(options, answer)
}

// SubmitAnswer evaluates text against the current question, records the
// attempt and locks the question. In multiple-choice mode text is the
// 1-based option number or the option text.
func (s *Session) SubmitAnswer(ctx context.Context, text string) (Attempt, error) {
	if s.phase != PhaseUnlocked || s.current == nil {
		return Attempt{}, &InvalidTransitionError{Op: "submit answer", Phase: s.phase}
	}
	q := s.current
	a := Attempt{
		WordID:    q.Word.ID,
		Source:    q.Word.Source,
		Target:    q.Word.Target,
		Prompt:    q.Prompt,
		Answer:    text,
		Canonical: q.Canonical,
		Direction: s.direction,
	}

	if s.mode == ModeMultipleChoice {
		chosen := choiceIndex(q.Options, text)
		if chosen < 0 {
			return Attempt{}, ErrInvalidChoice
		}
		a.Options = slices.Clone(q.Options)
		a.Chosen = chosen
		a.CorrectIndex = q.CorrectIndex
		a.Answer = q.Options[chosen]
		a.Canonical = q.Options[q.CorrectIndex]
		a.Correct = q.Options[chosen] == q.Options[q.CorrectIndex]
	} else {
		a.Correct = q.Solutions.Matches(text)
	}

	s.attempts = append(s.attempts, a)
	if a.Correct {
		s.correct++
	}
	s.phase = PhaseLocked
	s.recordStat(ctx, a)
	s.publish()
	return a, nil
}

// choiceIndex resolves an answer to an option index, or -1.
func choiceIndex(options []string, text string) int {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1
		}
		return -1
	}
	want := vocab.Normalize(text)
	if want == "" {
		return -1
	}
	for i, o := range options {
		if vocab.Normalize(o) == want {
			return i
		}
	}
	return -1
}

func (s *Session) recordStat(ctx context.Context, a Attempt) {
	if s.stats == nil {
		return
	}
	if err := s.stats.RecordAttempt(ctx, s.user.ID, a.WordID, a.Correct); err != nil {
		s.log.Warn("record word attempt", "word_id", a.WordID, "error", err)
	}
}

// Advance moves past a locked question. After the last question the
// session finishes and its result is recorded.
func (s *Session) Advance(ctx context.Context) error {
	if s.phase != PhaseLocked {
		return &InvalidTransitionError{Op: "advance", Phase: s.phase}
	}
	s.index++
	s.current = nil
	_, err := s.buildCurrent(ctx)
	return err
}

// Restart reshuffles the same pool and starts over. The pool is not
// fetched again and the discarded attempts are never stored.
func (s *Session) Restart(ctx context.Context) error {
	if s.pool == nil {
		return &InvalidTransitionError{Op: "restart", Phase: s.phase}
	}
	s.reset()
	s.log.Info("session restarted", "direction", s.direction.String())
	_, err := s.buildCurrent(ctx)
	return err
}

// CanChangeDirection reports whether the direction can change without
// losing anything: the first question is shown and nothing was answered.
func (s *Session) CanChangeDirection() bool {
	return s.phase == PhaseUnlocked && len(s.attempts) == 0 && s.index == 0
}

// ChangeDirection switches the translation direction. Before the first
// answer only the direction and the current prompt change. Afterwards the
// caller must confirm, and the session restarts with the new direction.
func (s *Session) ChangeDirection(ctx context.Context, dir vocab.Direction, confirmed bool) error {
	if dir == s.direction {
		return nil
	}
	if s.CanChangeDirection() {
		s.direction = dir
		if s.current != nil {
			s.current = s.newQuestion(s.current.Word)
		}
		s.publish()
		return nil
	}
	if s.pool == nil {
		return &InvalidTransitionError{Op: "change direction", Phase: s.phase}
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	s.direction = dir
	return s.Restart(ctx)
}

// finish enters PhaseFinished and records the result once.
func (s *Session) finish(ctx context.Context) {
	s.phase = PhaseFinished
	s.current = nil
	s.log.Info("session finished", "total", s.Total(), "correct", s.correct, "percent", s.Percent())
	if !s.resultPersisted && s.Total() > 0 {
		s.resultPersisted = true
		s.persist(ctx)
	}
	s.publish()
}

func (s *Session) persist(ctx context.Context) {
	res := Result{
		ID:        uuid.New().String(),
		UserID:    s.user.ID,
		UserEmail: s.user.Email,
		Course:    s.course,
		Total:     s.Total(),
		Correct:   s.correct,
		Percent:   s.Percent(),
		Mode:      s.mode.Tag(s.direction),
		CreatedAt: s.now(),
	}
	s.result = &res
	if s.recorder == nil {
		s.log.Warn("no result recorder configured, result not stored")
		return
	}
	if err := s.recorder.RecordSession(ctx, res); err != nil {
		s.persistErr = &PersistError{SessionID: s.id, Err: err}
		s.log.Error("record session result", "error", err)
	}
}

// Subscribe registers fn to receive a snapshot after every transition.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Session) publish() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:          s.id,
		Course:             s.course,
		Mode:               s.mode,
		Direction:          s.direction,
		Phase:              s.phase,
		Index:              s.index,
		Total:              s.Total(),
		Correct:            s.correct,
		Percent:            s.Percent(),
		Progress:           s.Progress(),
		CanChangeDirection: s.CanChangeDirection(),
		Attempts:           s.Attempts(),
		ResultPersisted:    s.resultPersisted,
	}
	if s.current != nil {
		snap.Prompt = s.current.Prompt
		snap.Options = slices.Clone(s.current.Options)
	}
	if n := len(s.attempts); n > 0 {
		last := s.attempts[n-1]
		snap.LastAttempt = &last
	}
	if s.persistErr != nil {
		snap.PersistError = s.persistErr.Error()
	}
	return snap
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Current returns the question on screen, or nil.
func (s *Session) Current() *Question { return s.current }

// Course returns the course the session quizzes.
func (s *Session) Course() vocab.Course { return s.course }

// Mode returns the question type.
func (s *Session) Mode() Mode { return s.mode }

// Direction returns the active translation direction.
func (s *Session) Direction() vocab.Direction { return s.direction }

// User returns the learner resolved by Load.
func (s *Session) User() User { return s.user }

// Finished reports whether every question has been answered.
func (s *Session) Finished() bool { return s.phase == PhaseFinished }

// Index returns the position of the current question.
func (s *Session) Index() int { return s.index }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.order) }

// Correct returns the number of correct answers so far.
func (s *Session) Correct() int { return s.correct }

// Percent returns the score so far over the whole session.
func (s *Session) Percent() int { return Percent(s.correct, s.Total()) }

// Attempts returns a copy of the attempt log.
func (s *Session) Attempts() []Attempt { return slices.Clone(s.attempts) }

// StartedAt returns when the current run began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Result returns the result built when the session finished, or nil.
func (s *Session) Result() *Result { return s.result }

// PersistErr returns the *PersistError of the last result write, if any.
func (s *Session) PersistErr() error { return s.persistErr }

// Progress renders the position as "n / total", counting a locked
// question as done.
func (s *Session) Progress() string {
	done := s.index
	if s.phase == PhaseLocked {
		done++
	}
	total := s.Total()
	return strconv.Itoa(min(done, total)) + " / " + strconv.Itoa(total)
}
