package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"tactical-trivia/internal/domain"
)

// QuestionLoader loads the catalog from the questions table in id order.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, mode, COALESCE(tier, ''), points, prompt, answer FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			mode, tier string
		)
		if err := rows.Scan(&q.ID, &mode, &tier, &q.Points, &q.Prompt, &q.Answer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Mode = domain.Mode(mode)
		q.Tier = domain.Tier(tier)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
