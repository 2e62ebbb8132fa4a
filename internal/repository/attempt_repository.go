package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsuite/cbt-backend/internal/model"
)

// AttemptRepository handles persisted practice attempts.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a single attempt row.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO practice_attempts
		   (student_id, student_name, total_questions, correct_count, score_percent,
		    grade, per_subject, completion_type, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		a.StudentID, a.StudentName, a.TotalQuestions, a.CorrectCount, a.ScorePercent,
		a.Grade, a.PerSubject, a.CompletionType, a.StartedAt, a.FinishedAt,
	).Scan(&a.ID)
}

// BulkCreate inserts a batch of attempts with a single UNNEST statement.
// Used by the persistence worker when flushing its queue.
func (r *AttemptRepository) BulkCreate(ctx context.Context, batch []*model.Attempt) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	studentIDs := make([]string, 0, n)
	names := make([]string, 0, n)
	totals := make([]int, 0, n)
	corrects := make([]int, 0, n)
	percents := make([]int, 0, n)
	grades := make([]string, 0, n)
	perSubjects := make([]string, 0, n)
	completions := make([]string, 0, n)
	startedAts := make([]time.Time, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, a := range batch {
		ps := a.PerSubject
		if ps == nil {
			ps = json.RawMessage(`[]`)
		}
		studentIDs = append(studentIDs, a.StudentID)
		names = append(names, a.StudentName)
		totals = append(totals, a.TotalQuestions)
		corrects = append(corrects, a.CorrectCount)
		percents = append(percents, a.ScorePercent)
		grades = append(grades, a.Grade)
		perSubjects = append(perSubjects, string(ps))
		completions = append(completions, string(a.CompletionType))
		startedAts = append(startedAts, a.StartedAt)
		finishedAts = append(finishedAts, a.FinishedAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO practice_attempts
		   (student_id, student_name, total_questions, correct_count, score_percent,
		    grade, per_subject, completion_type, started_at, finished_at)
		 SELECT * FROM UNNEST(
		   $1::text[], $2::text[], $3::int[], $4::int[], $5::int[],
		   $6::text[], $7::jsonb[], $8::text[], $9::timestamptz[], $10::timestamptz[]
		 )`,
		studentIDs, names, totals, corrects, percents,
		grades, perSubjects, completions, startedAts, finishedAts)
	return err
}

// ListByStudent returns a student's attempt history, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID string, page, perPage int) ([]model.Attempt, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM practice_attempts WHERE student_id = $1`, studentID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, student_name, total_questions, correct_count,
		        score_percent, grade, per_subject, completion_type, started_at, finished_at
		 FROM practice_attempts
		 WHERE student_id = $1
		 ORDER BY finished_at DESC
		 LIMIT $2 OFFSET $3`, studentID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.StudentID, &a.StudentName, &a.TotalQuestions,
			&a.CorrectCount, &a.ScorePercent, &a.Grade, &a.PerSubject,
			&a.CompletionType, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
