package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trivia-quiz-service/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	List() []*Session
	// Refresh republishes a session that changed on its own (load, countdown).
	// Sessions no longer held by the repository are ignored.
	Refresh(session *Session)
}

// QuestionProvider fetches a fresh batch of decoded questions.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuizService contains the quiz use cases: start, answer, navigate, finish.
type QuizService struct {
	provider     QuestionProvider
	sessions     SessionRepository
	highScores   *HighScoreTracker
	logger       *slog.Logger
	timing       Timing
	tickInterval time.Duration
	newTicker    TickerFactory
	now          func() time.Time
}

func NewQuizService(provider QuestionProvider, sessions SessionRepository, highScores *HighScoreTracker, logger *slog.Logger) *QuizService {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{
		provider:     provider,
		sessions:     sessions,
		highScores:   highScores,
		logger:       logger,
		timing:       Timing{}.withDefaults(),
		tickInterval: time.Second,
		newTicker:    NewRealTicker,
		now:          time.Now,
	}
}

// WithTiming overrides the question countdown and the tick interval.
func (s *QuizService) WithTiming(timing Timing, tickInterval time.Duration) *QuizService {
	s.timing = timing.withDefaults()
	if tickInterval > 0 {
		s.tickInterval = tickInterval
	}
	return s
}

// WithTicker is test-only for driving countdowns by hand.
func (s *QuizService) WithTicker(newTicker TickerFactory) *QuizService {
	s.newTicker = newTicker
	return s
}

// WithClock is test-only for deterministic idle tracking.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// Start registers a new session in the loading state.
func (s *QuizService) Start(_ context.Context) (*Session, error) {
	session := NewSessionWithClock(uuid.NewString(), s.timing, s.now)
	s.sessions.Save(session)
	s.logger.Info("quiz session started", "session", session.ID())
	return session, nil
}

// Load fetches the questions of a loading session. Provider failures are not
// returned: the session ends up in the no_questions state instead.
func (s *QuizService) Load(ctx context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}

	questions, err := s.provider.FetchQuestions(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuestions) {
			s.logger.Warn("provider returned no questions", "session", sessionID)
		} else {
			s.logger.Error("fetch questions failed", "session", sessionID, "error", err)
		}
		view := session.Fail()
		s.sessions.Refresh(session)
		return view, nil
	}

	view, err := session.Load(questions)
	if err != nil {
		return view, err
	}
	s.sessions.Refresh(session)
	if view.State == domain.StateReady {
		s.startCountdown(session)
	}
	return view, nil
}

// StartAndLoad is Start followed by Load.
func (s *QuizService) StartAndLoad(ctx context.Context) (domain.SessionView, error) {
	session, err := s.Start(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}
	return s.Load(ctx, session.ID())
}

// Select highlights an option of the active question.
func (s *QuizService) Select(_ context.Context, sessionID, option string) (domain.SessionView, error) {
	return s.act(sessionID, func(session *Session) (domain.SessionView, error) {
		return session.SelectOption(option)
	})
}

// Commit records the highlighted option and moves on.
func (s *QuizService) Commit(_ context.Context, sessionID string) (domain.SessionView, error) {
	return s.act(sessionID, (*Session).Commit)
}

// Skip moves on without answering.
func (s *QuizService) Skip(_ context.Context, sessionID string) (domain.SessionView, error) {
	return s.act(sessionID, (*Session).Skip)
}

// Previous moves back one question.
func (s *QuizService) Previous(_ context.Context, sessionID string) (domain.SessionView, error) {
	return s.act(sessionID, (*Session).Previous)
}

// View returns the current snapshot of a session.
func (s *QuizService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives every state change of a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Results scores a finished session. The high score is updated on the first call only.
func (s *QuizService) Results(ctx context.Context, sessionID string) (domain.Results, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Results{}, domain.ErrSessionNotFound
	}
	return session.resultsOnce(func(fs domain.FinishedSession) (domain.Results, error) {
		high, improved, err := s.highScores.Record(ctx, fs.Score)
		if err != nil {
			return domain.Results{}, err
		}
		if improved {
			s.logger.Info("new high score", "session", sessionID, "score", high)
		}
		return BuildResults(fs, high, improved), nil
	})
}

// HighScore returns the persisted best score.
func (s *QuizService) HighScore(ctx context.Context) (int, error) {
	return s.highScores.Current(ctx)
}

// Discard drops a session and stops its countdown.
func (s *QuizService) Discard(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.sessions.Delete(sessionID)
	session.Close()
}

// PlayAgain discards a session and starts a fresh one.
func (s *QuizService) PlayAgain(ctx context.Context, sessionID string) (domain.SessionView, error) {
	s.Discard(ctx, sessionID)
	return s.StartAndLoad(ctx)
}

// PruneIdle discards sessions that have not changed for longer than maxIdle.
func (s *QuizService) PruneIdle(ctx context.Context, maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-maxIdle)
	pruned := 0
	for _, session := range s.sessions.List() {
		if session.IdleSince().Before(cutoff) {
			s.Discard(ctx, session.ID())
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Info("pruned idle quiz sessions", "count", pruned)
	}
	return pruned
}

func (s *QuizService) act(sessionID string, op func(*Session) (domain.SessionView, error)) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	view, err := op(session)
	if err == nil {
		s.sessions.Save(session)
	}
	return view, err
}

func (s *QuizService) startCountdown(session *Session) {
	ctx, cancel := context.WithCancel(context.Background())
	session.setStop(cancel)
	countdown := NewCountdown(session, s.tickInterval, s.newTicker)
	go func() {
		if err := countdown.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("countdown stopped", "session", session.ID(), "error", err)
		}
		s.sessions.Refresh(session)
	}()
}
