package app_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"tactical-trivia/internal/app"
	"tactical-trivia/internal/domain"
	"tactical-trivia/internal/infra/memory"
)

func TestRegisterCreatesZeroRecord(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	registry := app.NewRegistryWithCost(memory.NewUserStore(), scores, nil, bcrypt.MinCost)

	user, err := registry.Register(ctx, domain.User{Username: "alice", Email: "alice@example.com", Password: "hunter2"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "hunter2" {
		t.Fatalf("expected password to be stored as an opaque hash")
	}

	rec, ok, err := scores.Get(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("expected score record, ok=%v err=%v", ok, err)
	}
	if rec.Total != 0 || rec.Answered != 0 || rec.Correct != 0 || rec.CalloutPoints != 0 {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}

func TestRegisterRejectsDuplicateAndIncomplete(t *testing.T) {
	ctx := context.Background()
	registry := app.NewRegistryWithCost(memory.NewUserStore(), memory.NewScoreStore(), nil, bcrypt.MinCost)

	if _, err := registry.Register(ctx, domain.User{Username: "alice", Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := registry.Register(ctx, domain.User{Username: "alice", Email: "b@example.com", Password: "pw"})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	for _, u := range []domain.User{
		{Email: "a@example.com", Password: "pw"},
		{Username: "bob", Password: "pw"},
		{Username: "bob", Email: "b@example.com"},
		{Username: "   ", Email: "b@example.com", Password: "pw"},
	} {
		if _, err := registry.Register(ctx, u); !errors.Is(err, domain.ErrIncompleteForm) {
			t.Fatalf("expected incomplete form for %+v, got %v", u, err)
		}
	}
}

func TestLoginChecksPassword(t *testing.T) {
	ctx := context.Background()
	registry := app.NewRegistryWithCost(memory.NewUserStore(), memory.NewScoreStore(), nil, bcrypt.MinCost)
	_, _ = registry.Register(ctx, domain.User{Username: "alice", Email: "a@example.com", Password: "pw"})

	if _, err := registry.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := registry.Login(ctx, "alice", "nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := registry.Login(ctx, "ghost", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

// flakyScores fails Init a fixed number of times before delegating.
type flakyScores struct {
	*memory.ScoreStore
	failures int
}

func (s *flakyScores) Init(ctx context.Context, username string) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("i/o timeout")
	}
	return s.ScoreStore.Init(ctx, username)
}

func TestRegisterRetriesAfterScoreInitFailure(t *testing.T) {
	ctx := context.Background()
	scores := &flakyScores{ScoreStore: memory.NewScoreStore(), failures: 1}
	users := memory.NewUserStore()
	registry := app.NewRegistryWithCost(users, scores, nil, bcrypt.MinCost)
	alice := domain.User{Username: "alice", Email: "alice@example.com", Password: "pw"}

	if _, err := registry.Register(ctx, alice); err == nil {
		t.Fatalf("expected first registration to fail")
	}
	if _, ok, _ := users.Get(ctx, "alice"); ok {
		t.Fatalf("failed registration must not store the user")
	}

	if _, err := registry.Register(ctx, alice); err != nil {
		t.Fatalf("retry register: %v", err)
	}
	if _, ok, err := scores.Get(ctx, "alice"); err != nil || !ok {
		t.Fatalf("expected score record after retry, ok=%v err=%v", ok, err)
	}
}

func TestDuplicateRegistrationKeepsScores(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	registry := app.NewRegistryWithCost(memory.NewUserStore(), scores, nil, bcrypt.MinCost)
	alice := domain.User{Username: "alice", Email: "alice@example.com", Password: "pw"}

	if _, err := registry.Register(ctx, alice); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := scores.Record(ctx, "alice", domain.ModeRanked, domain.Tier1, 4, true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := registry.Register(ctx, alice); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	rec, _, _ := scores.Get(ctx, "alice")
	if rec.Total != 4 || rec.Answered != 1 {
		t.Fatalf("expected existing record untouched, got %+v", rec)
	}
}
