package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"tactical-trivia/internal/domain"
)

// SessionState is the lifecycle position of a quiz run.
type SessionState string

const (
	StateActive   SessionState = "active"
	StateComplete SessionState = "complete"
)

// Session is one run through a fixed, ordered set of questions.
type Session struct {
	ID        string
	Username  string
	Mode      domain.Mode
	Tier      domain.Tier
	Questions []domain.Question
	Index     int
	Correct   int
	Answered  int
	State     SessionState
	UpdatedAt time.Time
}

// Current returns the question awaiting an answer.
func (s Session) Current() (domain.Question, bool) {
	if s.State != StateActive || s.Index >= len(s.Questions) {
		return domain.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Progress is the share of the run already behind the player.
func (s Session) Progress() int {
	return domain.Percent(s.Index, len(s.Questions))
}

// Engine drives quiz runs and feeds every answer into the score store.
type Engine struct {
	bank     BankRepository
	scores   ScoreStore
	sessions SessionRepository
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

func NewEngine(bank BankRepository, scores ScoreStore, sessions SessionRepository, logger *slog.Logger) *Engine {
	return NewEngineWithClock(bank, scores, sessions, logger, time.Now)
}

// NewEngineWithClock is test-only for deterministic timestamps.
func NewEngineWithClock(bank BankRepository, scores ScoreStore, sessions SessionRepository, logger *slog.Logger, now func() time.Time) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		bank:     bank,
		scores:   scores,
		sessions: sessions,
		logger:   logger,
		now:      now,
		newID:    uuid.NewString,
	}
}

// Start builds the question sequence for mode/tier and opens a run for username.
// An empty pool yields a run that is already complete.
func (e *Engine) Start(ctx context.Context, username string, mode domain.Mode, tier domain.Tier) (Session, error) {
	if !mode.Valid() {
		return Session{}, domain.ErrInvalidMode
	}
	bank, err := e.bank.GetBank(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
	}

	session := Session{
		ID:        e.newID(),
		Username:  username,
		Mode:      mode,
		Tier:      tier,
		Questions: Pick(bank, mode, tier, DefaultPickCount),
		State:     StateActive,
		UpdatedAt: e.now(),
	}
	sessionsStarted.WithLabelValues(string(mode)).Inc()

	if len(session.Questions) == 0 {
		session.State = StateComplete
		e.logger.InfoContext(ctx, "empty question pool",
			slog.String("mode", string(mode)),
			slog.String("tier", string(tier)),
		)
		return session, nil
	}

	e.sessions.Put(session)
	e.logger.DebugContext(ctx, "session started",
		slog.String("session_id", session.ID),
		slog.String("username", username),
		slog.Int("questions", len(session.Questions)),
	)
	return session, nil
}

// Answer records the player's self-reported result for the current question and advances.
// When the last question is answered the returned session is complete and the final
// tally (which includes this answer) is returned alongside it.
func (e *Engine) Answer(ctx context.Context, session Session, correct bool) (Session, *domain.Completion, error) {
	question, ok := session.Current()
	if !ok {
		return session, nil, domain.ErrSessionComplete
	}

	// Scoring follows the run's mode, so ranked questions in a fun run stay unscored.
	if err := e.scores.Record(ctx, session.Username, session.Mode, question.Tier, question.Points, correct); err != nil {
		return session, nil, fmt.Errorf("record answer: %w", err)
	}
	answersRecorded.WithLabelValues(string(session.Mode), strconv.FormatBool(correct)).Inc()

	session.Answered++
	if correct {
		session.Correct++
	}
	session.UpdatedAt = e.now()

	next := session.Index + 1
	if next < len(session.Questions) {
		session.Index = next
		e.sessions.Put(session)
		return session, nil, nil
	}

	session.Index = len(session.Questions)
	session.State = StateComplete
	e.sessions.Delete(session.ID)
	sessionsCompleted.WithLabelValues(string(session.Mode)).Inc()

	completion := &domain.Completion{
		Correct:    session.Correct,
		Answered:   session.Answered,
		Total:      len(session.Questions),
		Percentage: domain.Percent(session.Correct, len(session.Questions)),
	}
	e.logger.InfoContext(ctx, "session complete",
		slog.String("session_id", session.ID),
		slog.String("username", session.Username),
		slog.Int("correct", completion.Correct),
		slog.Int("total", completion.Total),
	)
	return session, completion, nil
}

// Resume returns an in-progress run.
func (e *Engine) Resume(_ context.Context, sessionID string) (Session, error) {
	session, ok := e.sessions.Get(sessionID)
	if !ok {
		return Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

// Abandon drops an in-progress run without touching scores already recorded.
func (e *Engine) Abandon(_ context.Context, sessionID string) {
	e.sessions.Delete(sessionID)
}

// Profile returns the aggregate statistics of a player.
func (e *Engine) Profile(ctx context.Context, username string) (domain.ScoreRecord, bool, error) {
	return e.scores.Get(ctx, username)
}

// Leaderboard returns the top players by ranked total.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return e.scores.Leaderboard(ctx, limit)
}
