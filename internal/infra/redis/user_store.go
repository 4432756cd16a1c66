package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"tactical-trivia/internal/domain"
)

// UserStore keeps the user directory in Redis, one hash per user:
// HSET trivia:user:{username} username .. email .. password ..
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

// createUser writes the whole hash only when the username field is absent.
var createUser = redis.NewScript(`
if redis.call("HSETNX", KEYS[1], "username", ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "email", ARGV[2], "password", ARGV[3])
return 1
`)

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	created, err := createUser.Run(ctx, s.client, []string{s.key(user.Username)}, user.Username, user.Email, user.Password).Int()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if created == 0 {
		return domain.ErrDuplicateUser
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, username string) (domain.User, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(username)).Result()
	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	if len(fields) == 0 {
		return domain.User{}, false, nil
	}
	return domain.User{
		Username: fields["username"],
		Email:    fields["email"],
		Password: fields["password"],
	}, true, nil
}

func (s *UserStore) key(username string) string {
	return "trivia:user:" + username
}
