package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions stay in a local map; their countdowns and subscribers live in
//     this process.
//   - Redis holds a liveness marker per session, rewritten on every save and
//     refresh, so other tooling can count active quizzes with SCAN quiz:session:*.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	s.mark(session)
}

func (s *SessionStore) Refresh(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.ID()] != session {
		return
	}
	s.mark(session)
}

// mark writes the best-effort liveness marker; callers hold mu.
func (s *SessionStore) mark(session *app.Session) {
	_ = s.client.Set(context.Background(), s.key(session.ID()), string(session.View().State), s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) List() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
