package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"tactical-trivia/internal/app"
	"tactical-trivia/internal/domain"
)

const (
	leaderboardKey = "trivia:leaderboard:total"

	fieldTotal    = "total"
	fieldCallouts = "callouts"
	fieldAnswered = "answered"
	fieldCorrect  = "correct"
	tierPrefix    = "tier:"
)

// ScoreStore keeps one hash per player plus a ZSET of ranked totals:
//
//	HSET trivia:score:{username} total N callouts N answered N correct N tier:{tier} N
//	ZADD trivia:leaderboard:total N {username}
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) Init(ctx context.Context, username string) error {
	key := s.key(username)
	pipe := s.client.TxPipeline()
	for _, field := range []string{fieldTotal, fieldCallouts, fieldAnswered, fieldCorrect} {
		pipe.HSetNX(ctx, key, field, 0)
	}
	pipe.ZAddNX(ctx, leaderboardKey, redis.Z{Score: 0, Member: username})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("init score record: %w", err)
	}
	return nil
}

// Record applies one answer. Records are never deleted, so an existence check ahead of
// the increments is enough to keep unknown users from materializing.
func (s *ScoreStore) Record(ctx context.Context, username string, mode domain.Mode, tier domain.Tier, points int, correct bool) error {
	key := s.key(username)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	if exists == 0 {
		return nil
	}

	delta := app.AnswerDelta(mode, tier, points, correct)
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, fieldAnswered, int64(delta.Answered))
	if delta.Correct != 0 {
		pipe.HIncrBy(ctx, key, fieldCorrect, int64(delta.Correct))
	}
	if delta.RankedPoints != 0 {
		pipe.HIncrBy(ctx, key, fieldTotal, int64(delta.RankedPoints))
		pipe.HIncrBy(ctx, key, tierPrefix+string(delta.Tier), int64(delta.RankedPoints))
		pipe.ZIncrBy(ctx, leaderboardKey, float64(delta.RankedPoints), username)
	}
	if delta.CalloutPoints != 0 {
		pipe.HIncrBy(ctx, key, fieldCallouts, int64(delta.CalloutPoints))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (s *ScoreStore) Get(ctx context.Context, username string) (domain.ScoreRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(username)).Result()
	if err != nil {
		return domain.ScoreRecord{}, false, fmt.Errorf("get score record: %w", err)
	}
	if len(fields) == 0 {
		return domain.ScoreRecord{}, false, nil
	}

	rec := domain.NewScoreRecord()
	for field, raw := range fields {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.ScoreRecord{}, false, fmt.Errorf("score field %s: %w", field, err)
		}
		switch {
		case field == fieldTotal:
			rec.Total = n
		case field == fieldCallouts:
			rec.CalloutPoints = n
		case field == fieldAnswered:
			rec.Answered = n
		case field == fieldCorrect:
			rec.Correct = n
		case strings.HasPrefix(field, tierPrefix):
			rec.TierTotals[domain.Tier(strings.TrimPrefix(field, tierPrefix))] = n
		}
	}
	return rec, true, nil
}

// Leaderboard reads the top limit members and then every member tied with the last one,
// so ties order by username like the in-memory store (ZREVRANGE orders them in reverse).
// A limit <= 0 reads the whole board.
func (s *ScoreStore) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	results, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	if limit > 0 && len(results) == limit {
		last := results[len(results)-1].Score
		bound := strconv.FormatFloat(last, 'f', -1, 64)
		tied, err := s.client.ZRangeByScoreWithScores(ctx, leaderboardKey, &redis.ZRangeBy{Min: bound, Max: bound}).Result()
		if err != nil {
			return nil, fmt.Errorf("leaderboard ties: %w", err)
		}
		kept := results[:0]
		for _, result := range results {
			if result.Score > last {
				kept = append(kept, result)
			}
		}
		results = append(kept, tied...)
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			Username: result.Member.(string),
			Total:    int(result.Score),
		}
	}
	return app.RankEntries(entries, limit), nil
}

func (s *ScoreStore) key(username string) string {
	return "trivia:score:" + username
}
