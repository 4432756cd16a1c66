package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"tactical-trivia/internal/domain"
)

// Registry is the user directory. Registering a user also opens their score record.
type Registry struct {
	users  UserRepository
	scores ScoreStore
	logger *slog.Logger
	cost   int
}

func NewRegistry(users UserRepository, scores ScoreStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		users:  users,
		scores: scores,
		logger: logger,
		cost:   bcrypt.DefaultCost,
	}
}

// NewRegistryWithCost is test-only; a low bcrypt cost keeps suites fast.
func NewRegistryWithCost(users UserRepository, scores ScoreStore, logger *slog.Logger, cost int) *Registry {
	r := NewRegistry(users, scores, logger)
	r.cost = cost
	return r
}

// Register creates a user and a zero-valued score record for them.
// The returned user carries the password hash, not the submitted password.
func (r *Registry) Register(ctx context.Context, user domain.User) (domain.User, error) {
	if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.Email) == "" || user.Password == "" {
		registrations.WithLabelValues("incomplete").Inc()
		return domain.User{}, domain.ErrIncompleteForm
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), r.cost)
	if err != nil {
		registrations.WithLabelValues("error").Inc()
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)

	// Init runs before Create and is idempotent: a stored user always has a record.
	if err := r.scores.Init(ctx, user.Username); err != nil {
		registrations.WithLabelValues("error").Inc()
		return domain.User{}, fmt.Errorf("init score record: %w", err)
	}
	if err := r.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			registrations.WithLabelValues("duplicate").Inc()
		} else {
			registrations.WithLabelValues("error").Inc()
		}
		return domain.User{}, err
	}

	registrations.WithLabelValues("success").Inc()
	r.logger.InfoContext(ctx, "user registered", slog.String("username", user.Username))
	return user, nil
}

// Lookup returns a registered user.
func (r *Registry) Lookup(ctx context.Context, username string) (domain.User, bool, error) {
	return r.users.Get(ctx, username)
}

// Login checks a password against the stored hash.
func (r *Registry) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, ok, err := r.users.Get(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
