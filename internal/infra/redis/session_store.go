package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"tactical-trivia/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Runs are kept in a local map; Redis holds a liveness marker per run (refreshed on
// every answer) so other instances and operators can see which runs are in flight.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	sessions map[string]app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]app.Session),
	}
}

func (s *SessionStore) Put(session app.Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID), session.Username, s.ttl).Err()
}

func (s *SessionStore) Get(id string) (app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

// Prune drops local runs idle for longer than maxIdle along with their markers.
func (s *SessionStore) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	var stale []string
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()
	for _, id := range stale {
		_ = s.client.Del(context.Background(), s.key(id)).Err()
	}
	return len(stale)
}

func (s *SessionStore) key(id string) string {
	return "trivia:session:" + id
}
