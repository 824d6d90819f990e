package app

import (
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

const (
	// DefaultQuestionSeconds is the countdown each question starts with.
	DefaultQuestionSeconds = 30
	// DefaultWarningSeconds is the remaining time at or below which views tint the countdown.
	DefaultWarningSeconds = 10
)

// Timing configures the per-question countdown.
type Timing struct {
	QuestionSeconds int
	WarningSeconds  int
}

func (t Timing) withDefaults() Timing {
	if t.QuestionSeconds <= 0 {
		t.QuestionSeconds = DefaultQuestionSeconds
	}
	if t.WarningSeconds <= 0 {
		t.WarningSeconds = DefaultWarningSeconds
	}
	return t
}

// Session is the state machine of one quiz run: loading -> ready -> finished,
// or loading -> no_questions. It is safe for concurrent use.
type Session struct {
	id        string
	createdAt time.Time
	now       func() time.Time
	timing    Timing

	mu            sync.RWMutex
	state         domain.SessionState
	questions     []domain.Question
	answers       []*string
	selected      *string
	currentIndex  int
	score         int
	timeRemaining int
	turn          int
	finished      *domain.FinishedSession
	lastActivity  time.Time
	closed        bool
	stop          func()
	subscribers   map[chan domain.SessionView]struct{}

	resultsMu sync.Mutex
	results   *domain.Results
}

// NewSession creates a session in the loading state.
func NewSession(id string, timing Timing) *Session {
	return NewSessionWithClock(id, timing, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id string, timing Timing, now func() time.Time) *Session {
	created := now()
	return &Session{
		id:           id,
		createdAt:    created,
		now:          now,
		timing:       timing.withDefaults(),
		state:        domain.StateLoading,
		lastActivity: created,
		subscribers:  make(map[chan domain.SessionView]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Load moves a loading session to ready, or to no_questions when the batch is empty.
func (s *Session) Load(questions []domain.Question) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateLoading {
		return s.viewLocked(), domain.ErrSessionNotReady
	}
	if len(questions) == 0 {
		s.state = domain.StateNoQuestions
		return s.broadcastLocked(), nil
	}

	s.questions = questions
	s.answers = make([]*string, len(questions))
	s.score = 0
	s.state = domain.StateReady
	s.moveToLocked(0)
	return s.broadcastLocked(), nil
}

// Fail records a failed fetch; the session becomes a terminal no_questions session.
func (s *Session) Fail() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateLoading {
		s.state = domain.StateNoQuestions
	}
	return s.broadcastLocked()
}

// SelectOption highlights opt for the active question without committing it.
func (s *Session) SelectOption(opt string) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateReady {
		return s.viewLocked(), domain.ErrSessionNotReady
	}
	if !s.questions[s.currentIndex].HasOption(opt) {
		return s.viewLocked(), domain.ErrInvalidOption
	}
	s.selected = &opt
	return s.broadcastLocked(), nil
}

// Commit records the highlighted option for the active question and advances.
// Re-answering a question corrects the score in either direction.
func (s *Session) Commit() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateReady {
		return s.viewLocked(), domain.ErrSessionNotReady
	}
	if s.selected == nil {
		return s.viewLocked(), domain.ErrNoSelection
	}

	selected := *s.selected
	correct := s.questions[s.currentIndex].CorrectAnswer
	isCorrect := selected == correct

	if prev := s.answers[s.currentIndex]; prev == nil {
		if isCorrect {
			s.score++
		}
	} else {
		wasCorrect := *prev == correct
		if wasCorrect && !isCorrect {
			s.score--
		}
		if !wasCorrect && isCorrect {
			s.score++
		}
	}
	s.answers[s.currentIndex] = &selected
	s.selected = nil

	s.advanceLocked()
	return s.broadcastLocked(), nil
}

// Skip advances without touching the answer or the score of the active question.
func (s *Session) Skip() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateReady {
		return s.viewLocked(), domain.ErrSessionNotReady
	}
	s.selected = nil
	s.advanceLocked()
	return s.broadcastLocked(), nil
}

// Previous moves back one question and restores its committed answer as the highlight.
func (s *Session) Previous() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateReady {
		return s.viewLocked(), domain.ErrSessionNotReady
	}
	if s.currentIndex == 0 {
		return s.viewLocked(), domain.ErrNoPreviousQuestion
	}
	s.moveToLocked(s.currentIndex - 1)
	return s.broadcastLocked(), nil
}

// Tick consumes one second of the active question; at zero it skips.
func (s *Session) Tick() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked()
}

// tickAt is Tick for a countdown armed on turn. A tick that arrives after the
// question changed belongs to the previous question and is dropped.
func (s *Session) tickAt(turn int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateReady && s.turn != turn {
		return s.viewLocked(), nil
	}
	return s.tickLocked()
}

func (s *Session) tickLocked() (domain.SessionView, error) {
	if s.state != domain.StateReady {
		return s.viewLocked(), domain.ErrSessionNotReady
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.selected = nil
		s.advanceLocked()
	}
	return s.broadcastLocked(), nil
}

// View returns the current snapshot.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Finished returns the snapshot produced when the session ended.
func (s *Session) Finished() (domain.FinishedSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.finished == nil {
		return domain.FinishedSession{}, false
	}
	return *s.finished, true
}

// Score returns the incrementally maintained score.
func (s *Session) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// RescanScore recomputes the score from the committed answers.
func (s *Session) RescanScore() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score := 0
	for i, a := range s.answers {
		if a != nil && *a == s.questions[i].CorrectAnswer {
			score++
		}
	}
	return score
}

// Answers returns a copy of the committed answer slots.
func (s *Session) Answers() []*string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAnswers(s.answers)
}

// IdleSince reports when the session last changed.
func (s *Session) IdleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Close stops the countdown and closes every subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (s *Session) setStop(stop func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stop()
		return
	}
	s.stop = stop
	s.mu.Unlock()
}

func (s *Session) subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	ch <- s.viewLocked()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// resultsOnce builds the results of a finished session exactly once.
func (s *Session) resultsOnce(build func(domain.FinishedSession) (domain.Results, error)) (domain.Results, error) {
	s.resultsMu.Lock()
	defer s.resultsMu.Unlock()

	if s.results != nil {
		return *s.results, nil
	}
	fs, ok := s.Finished()
	if !ok {
		return domain.Results{}, domain.ErrSessionNotFinished
	}
	res, err := build(fs)
	if err != nil {
		return domain.Results{}, err
	}
	s.results = &res
	return res, nil
}

func (s *Session) advanceLocked() {
	next := s.currentIndex + 1
	if next >= len(s.questions) {
		s.state = domain.StateFinished
		s.selected = nil
		s.finished = &domain.FinishedSession{
			Score:     s.score,
			Total:     len(s.questions),
			Answers:   copyAnswers(s.answers),
			Questions: s.questions,
		}
		return
	}
	s.moveToLocked(next)
}

// moveToLocked applies the index-change side effects: fresh countdown and the
// committed answer (if any) as the highlight.
func (s *Session) moveToLocked(idx int) {
	s.currentIndex = idx
	s.timeRemaining = s.timing.QuestionSeconds
	s.selected = copyAnswer(s.answers[idx])
	s.turn++
}

func (s *Session) broadcastLocked() domain.SessionView {
	s.lastActivity = s.now()
	view := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// drop the stale update so a slow reader never blocks the state machine
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (s *Session) viewLocked() domain.SessionView {
	view := domain.SessionView{
		SessionID: s.id,
		State:     s.state,
		Total:     len(s.questions),
		Score:     s.score,
		Turn:      s.turn,
	}

	switch s.state {
	case domain.StateReady:
		q := s.questions[s.currentIndex]
		view.Index = s.currentIndex
		view.TimeRemaining = s.timeRemaining
		view.Warning = s.timeRemaining <= s.timing.WarningSeconds
		view.Question = &domain.QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
		}
		view.Selected = copyAnswer(s.selected)
		view.CanCommit = s.selected != nil
		view.CanPrevious = s.currentIndex > 0
		view.CanSkip = true
		view.CommitLabel = "Next"
		if s.currentIndex == len(s.questions)-1 {
			view.CommitLabel = "Finish"
		}
	case domain.StateFinished:
		view.Index = s.currentIndex
		view.Finished = s.finished
	}
	return view
}

func copyAnswer(a *string) *string {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}

func copyAnswers(answers []*string) []*string {
	out := make([]*string, len(answers))
	for i, a := range answers {
		out[i] = copyAnswer(a)
	}
	return out
}
