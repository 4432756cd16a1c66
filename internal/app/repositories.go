package app

import (
	"context"

	"tactical-trivia/internal/domain"
)

// BankRepository returns the question catalog in insertion order (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) ([]domain.Question, error)
}

// UserRepository abstracts the user directory (in-memory, Redis, etc).
type UserRepository interface {
	// Create stores a new user, failing with domain.ErrDuplicateUser if the username is taken.
	Create(ctx context.Context, user domain.User) error
	Get(ctx context.Context, username string) (domain.User, bool, error)
}

// ScoreStore maps usernames to aggregate statistics.
type ScoreStore interface {
	// Init creates a zero-valued record if none exists.
	Init(ctx context.Context, username string) error
	// Record applies one answer. Unknown usernames are ignored without error.
	Record(ctx context.Context, username string, mode domain.Mode, tier domain.Tier, points int, correct bool) error
	Get(ctx context.Context, username string) (domain.ScoreRecord, bool, error)
	// Leaderboard orders players by ranked total, ties broken by username. limit <= 0 means all.
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// SessionRepository tracks quiz runs that are still in progress.
type SessionRepository interface {
	Put(session Session)
	Get(id string) (Session, bool)
	Delete(id string)
}
