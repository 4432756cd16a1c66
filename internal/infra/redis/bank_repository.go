package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"tactical-trivia/internal/domain"
)

const bankKey = "trivia:bank"

// QuestionLoader fetches the question catalog from a backing store (file, Postgres, ...).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// BankRepository caches the catalog in Redis and falls back to a loader on cache miss.
// Questions are stored in catalog order as JSON: RPUSH trivia:bank {question...}
type BankRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context) ([]domain.Question, error) {
	if bank, ok := r.cached(ctx); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(bank) == 0 {
			return bank, nil
		}

		values := make([]interface{}, 0, len(bank))
		for _, q := range bank {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("encode question %d: %w", q.ID, err)
			}
			values = append(values, raw)
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, bankKey)
		pipe.RPush(ctx, bankKey, values...)
		if ttl > 0 {
			pipe.Expire(ctx, bankKey, ttl)
		}
		// A failed cache fill is not fatal; the next call reloads.
		_, _ = pipe.Exec(ctx)

		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := r.client.LRange(ctx, bankKey, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	bank := make([]domain.Question, 0, len(raw))
	for _, item := range raw {
		var q domain.Question
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			return nil, false
		}
		bank = append(bank, q)
	}
	return bank, true
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
