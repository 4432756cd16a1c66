package memory

import (
	"context"
	"sync"

	"tactical-trivia/internal/app"
	"tactical-trivia/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore.
type ScoreStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{records: make(map[string]*domain.ScoreRecord)}
}

func (s *ScoreStore) Init(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[username]; !ok {
		rec := domain.NewScoreRecord()
		s.records[username] = &rec
	}
	return nil
}

func (s *ScoreStore) Record(_ context.Context, username string, mode domain.Mode, tier domain.Tier, points int, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[username]
	if !ok {
		return nil
	}
	app.AnswerDelta(mode, tier, points, correct).Apply(rec)
	return nil
}

func (s *ScoreStore) Get(_ context.Context, username string) (domain.ScoreRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[username]
	if !ok {
		return domain.ScoreRecord{}, false, nil
	}
	return rec.Clone(), true, nil
}

func (s *ScoreStore) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.records))
	for username, rec := range s.records {
		entries = append(entries, domain.LeaderboardEntry{Username: username, Total: rec.Total})
	}
	s.mu.RUnlock()

	return app.RankEntries(entries, limit), nil
}
