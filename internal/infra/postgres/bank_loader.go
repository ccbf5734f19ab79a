package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-battle/internal/domain"
)

// BankLoader loads the question bank from Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context) (domain.QuestionBank, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, prompt, options, correct_index, difficulty FROM questions`)
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load question bank: %w", err)
	}
	defer rows.Close()

	var bank domain.QuestionBank
	for rows.Next() {
		var q domain.Question
		var difficulty string
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Options, &q.CorrectIndex, &difficulty); err != nil {
			return domain.QuestionBank{}, fmt.Errorf("scan question: %w", err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		bank.Questions = append(bank.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("read question bank: %w", err)
	}
	if len(bank.Questions) == 0 {
		return domain.QuestionBank{}, domain.ErrBankNotFound
	}
	return bank, nil
}
