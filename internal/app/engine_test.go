package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"tactical-trivia/internal/app"
	"tactical-trivia/internal/domain"
	"tactical-trivia/internal/infra/memory"
)

type fixture struct {
	registry *app.Registry
	engine   *app.Engine
	scores   *memory.ScoreStore
	sessions *memory.SessionStore
}

func newFixture(t *testing.T, bank []domain.Question) fixture {
	t.Helper()
	scores := memory.NewScoreStore()
	sessions := memory.NewSessionStore()
	bankRepo := memory.NewBankRepository(memory.NewStaticQuestionLoader(bank), 5*time.Minute)
	return fixture{
		registry: app.NewRegistryWithCost(memory.NewUserStore(), scores, nil, bcrypt.MinCost),
		engine:   app.NewEngine(bankRepo, scores, sessions, nil),
		scores:   scores,
		sessions: sessions,
	}
}

func (f fixture) register(t *testing.T, username string) {
	t.Helper()
	if _, err := f.registry.Register(context.Background(), domain.User{Username: username, Email: username + "@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func TestRankedTier4RunCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())
	f.register(t, "alice")

	session, err := f.engine.Start(ctx, "alice", domain.ModeRanked, domain.Tier4)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	q, ok := session.Current()
	if !ok || q.Answer != "Five" || len(session.Questions) != 1 {
		t.Fatalf("expected single tier4 question, got %+v", session.Questions)
	}

	session, completion, err := f.engine.Answer(ctx, session, true)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if completion == nil {
		t.Fatalf("expected completion")
	}
	if session.State != app.StateComplete {
		t.Fatalf("expected complete state, got %s", session.State)
	}
	if completion.Percentage != 100 || completion.Correct != 1 || completion.Total != 1 {
		t.Fatalf("unexpected completion %+v", completion)
	}

	rec, _, _ := f.scores.Get(ctx, "alice")
	if rec.Total != 1 || rec.TierTotals[domain.Tier4] != 1 || rec.Answered != 1 || rec.Correct != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, ok := f.sessions.Get(session.ID); ok {
		t.Fatalf("expected completed run dropped from session store")
	}
}

func TestFunRunNeverScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())
	f.register(t, "alice")

	session, err := f.engine.Start(ctx, "alice", domain.ModeFun, domain.TierNone)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// The first fun question is a ranked tier4 item; the run's mode still governs scoring.
	session, completion, err := f.engine.Answer(ctx, session, false)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if completion != nil {
		t.Fatalf("expected run to continue")
	}
	if session.Index != 1 || session.Answered != 1 || session.Correct != 0 {
		t.Fatalf("unexpected local tallies %+v", session)
	}

	rec, _, _ := f.scores.Get(ctx, "alice")
	if rec.Total != 0 || rec.Answered != 1 || rec.Correct != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, _, err := f.engine.Answer(ctx, session, true); err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	rec, _, _ = f.scores.Get(ctx, "alice")
	if rec.Total != 0 || rec.Correct != 1 {
		t.Fatalf("fun answers must not move total, got %+v", rec)
	}
}

func TestFullRunTallies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())
	f.register(t, "alice")

	session, err := f.engine.Start(ctx, "alice", domain.ModeFun, domain.TierNone)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := []bool{true, false, true, true, false}
	var completion *domain.Completion
	for i, correct := range answers {
		if completion != nil {
			t.Fatalf("run completed early at answer %d", i)
		}
		if got := session.Progress(); got != domain.Percent(i, len(answers)) {
			t.Fatalf("progress at %d = %d", i, got)
		}
		session, completion, err = f.engine.Answer(ctx, session, correct)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if completion == nil {
		t.Fatalf("expected completion after last answer")
	}
	if completion.Correct != 3 || completion.Answered != 5 || completion.Percentage != 60 {
		t.Fatalf("unexpected completion %+v", completion)
	}
	if session.Index != len(session.Questions) {
		t.Fatalf("index %d must stop at %d", session.Index, len(session.Questions))
	}
}

func TestAnswerAfterCompleteIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())
	f.register(t, "alice")

	session, _ := f.engine.Start(ctx, "alice", domain.ModeRanked, domain.Tier1)
	session, _, _ = f.engine.Answer(ctx, session, true)

	if _, _, err := f.engine.Answer(ctx, session, true); !errors.Is(err, domain.ErrSessionComplete) {
		t.Fatalf("expected session complete error, got %v", err)
	}
	rec, _, _ := f.scores.Get(ctx, "alice")
	if rec.Answered != 1 {
		t.Fatalf("rejected answer must not be recorded, answered=%d", rec.Answered)
	}
}

func TestEmptyPoolStartsComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())

	session, err := f.engine.Start(ctx, "alice", domain.ModeCallouts, domain.TierNone)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.State != app.StateComplete || len(session.Questions) != 0 {
		t.Fatalf("expected complete empty run, got %+v", session)
	}
	if _, _, err := f.engine.Answer(ctx, session, true); !errors.Is(err, domain.ErrSessionComplete) {
		t.Fatalf("expected session complete error, got %v", err)
	}
}

func TestStartRejectsUnknownMode(t *testing.T) {
	f := newFixture(t, domain.DefaultQuestionBank())
	if _, err := f.engine.Start(context.Background(), "alice", domain.Mode("casual"), domain.TierNone); !errors.Is(err, domain.ErrInvalidMode) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
}

func TestUnregisteredPlayerLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())

	session, _ := f.engine.Start(ctx, "ghost", domain.ModeRanked, domain.Tier4)
	if _, _, err := f.engine.Answer(ctx, session, true); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, ok, _ := f.engine.Profile(ctx, "ghost"); ok {
		t.Fatalf("expected absent record for unregistered user")
	}
}

func TestResumeAndAbandon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())
	f.register(t, "alice")

	session, _ := f.engine.Start(ctx, "alice", domain.ModeFun, domain.TierNone)
	session, _, _ = f.engine.Answer(ctx, session, true)

	resumed, err := f.engine.Resume(ctx, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Index != 1 || resumed.Correct != 1 {
		t.Fatalf("expected resumed run at index 1, got %+v", resumed)
	}

	f.engine.Abandon(ctx, session.ID)
	if _, err := f.engine.Resume(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestLeaderboardOrdersByRankedTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.DefaultQuestionBank())
	f.register(t, "alice")
	f.register(t, "bob")

	s, _ := f.engine.Start(ctx, "bob", domain.ModeRanked, domain.Tier1)
	_, _, _ = f.engine.Answer(ctx, s, true)
	s, _ = f.engine.Start(ctx, "alice", domain.ModeRanked, domain.Tier3)
	_, _, _ = f.engine.Answer(ctx, s, true)

	entries, err := f.engine.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "bob" || entries[0].Total != 4 || entries[1].Total != 2 {
		t.Fatalf("unexpected leaderboard %+v", entries)
	}
}

type failingBank struct{}

func (failingBank) GetBank(context.Context) ([]domain.Question, error) {
	return nil, errors.New("connection refused")
}

func TestStartReportsUnavailableBank(t *testing.T) {
	engine := app.NewEngine(failingBank{}, memory.NewScoreStore(), memory.NewSessionStore(), nil)
	if _, err := engine.Start(context.Background(), "alice", domain.ModeRanked, domain.Tier1); !errors.Is(err, domain.ErrBankUnavailable) {
		t.Fatalf("expected ErrBankUnavailable, got %v", err)
	}
}
