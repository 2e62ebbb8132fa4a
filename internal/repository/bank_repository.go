package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsuite/cbt-backend/internal/model"
)

// BankRepository handles question-bank data access.
type BankRepository struct {
	pool *pgxpool.Pool
}

// NewBankRepository creates a new BankRepository.
func NewBankRepository(pool *pgxpool.Pool) *BankRepository {
	return &BankRepository{pool: pool}
}

// Create inserts a new bank question and fills in its generated fields.
func (r *BankRepository) Create(ctx context.Context, q *model.BankQuestion) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO bank_questions (subject, difficulty, text, options, correct_option, explanation)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		q.Subject, q.Difficulty, q.Text, q.Options, q.CorrectOption, q.Explanation,
	).Scan(&q.ID, &q.CreatedAt)
}

// Delete removes a bank question by ID.
func (r *BankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM bank_questions WHERE id = $1`, id)
	return err
}

// List returns a page of bank questions, optionally filtered by subject.
func (r *BankRepository) List(ctx context.Context, subject string, page, perPage int) ([]model.BankQuestion, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bank_questions WHERE ($1 = '' OR subject = $1)`, subject,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, subject, difficulty, text, options, correct_option, explanation, created_at
		 FROM bank_questions
		 WHERE ($1 = '' OR subject = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, subject, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.BankQuestion
	for rows.Next() {
		var q model.BankQuestion
		if err := rows.Scan(&q.ID, &q.Subject, &q.Difficulty, &q.Text, &q.Options,
			&q.CorrectOption, &q.Explanation, &q.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

// RandomBySubject picks up to count random questions for a subject at the
// given difficulty. Callers check the returned length against what they
// asked for.
func (r *BankRepository) RandomBySubject(ctx context.Context, subject, difficulty string, count int) ([]model.BankQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject, difficulty, text, options, correct_option, explanation, created_at
		 FROM bank_questions
		 WHERE subject = $1 AND difficulty = $2
		 ORDER BY random()
		 LIMIT $3`, subject, difficulty, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BankQuestion
	for rows.Next() {
		var q model.BankQuestion
		if err := rows.Scan(&q.ID, &q.Subject, &q.Difficulty, &q.Text, &q.Options,
			&q.CorrectOption, &q.Explanation, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Subjects returns the distinct subject names present in the bank together
// with how many questions each holds per difficulty.
func (r *BankRepository) Subjects(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject, difficulty, COUNT(*)
		 FROM bank_questions
		 GROUP BY subject, difficulty
		 ORDER BY subject`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]int)
	for rows.Next() {
		var subject, difficulty string
		var n int
		if err := rows.Scan(&subject, &difficulty, &n); err != nil {
			return nil, err
		}
		if out[subject] == nil {
			out[subject] = make(map[string]int)
		}
		out[subject][difficulty] = n
	}
	return out, rows.Err()
}
