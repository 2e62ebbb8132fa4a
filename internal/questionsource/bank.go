package questionsource

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/repository"
)

// BankSource draws papers from the Postgres question bank.
type BankSource struct {
	repo *repository.BankRepository
	log  zerolog.Logger
}

// NewBankSource creates a BankSource.
func NewBankSource(repo *repository.BankRepository, log zerolog.Logger) *BankSource {
	return &BankSource{
		repo: repo,
		log:  log.With().Str("component", "bank_source").Logger(),
	}
}

// Generate picks random questions per subject at the requested difficulty.
// Returns ErrInsufficientQuestions when any subject cannot cover its count.
func (s *BankSource) Generate(ctx context.Context, req Request) (*Paper, error) {
	paper := &Paper{}

	for _, spec := range req.Subjects {
		rows, err := s.repo.RandomBySubject(ctx, spec.Name, req.Difficulty, spec.Count)
		if err != nil {
			return nil, fmt.Errorf("query bank for %q: %w", spec.Name, err)
		}
		if len(rows) < spec.Count {
			s.log.Warn().
				Str("subject", spec.Name).
				Str("difficulty", req.Difficulty).
				Int("want", spec.Count).
				Int("have", len(rows)).
				Msg("Bank cannot cover subject")
			return nil, fmt.Errorf("subject %q has %d of %d questions: %w",
				spec.Name, len(rows), spec.Count, ErrInsufficientQuestions)
		}

		for _, row := range rows {
			q, err := bankQuestion(row)
			if err != nil {
				return nil, fmt.Errorf("bank question %s: %w", row.ID, err)
			}
			paper.Questions = append(paper.Questions, q)
		}
		paper.Subjects = append(paper.Subjects, spec.Name)
	}

	return paper, nil
}

// bankQuestion converts a bank row into a normalized core question.
func bankQuestion(row model.BankQuestion) (exam.Question, error) {
	var rawOptions []json.RawMessage
	if err := json.Unmarshal(row.Options, &rawOptions); err != nil {
		return exam.Question{}, fmt.Errorf("options not a JSON array: %w", err)
	}
	if row.CorrectOption < 0 || row.CorrectOption >= len(rawOptions) {
		return exam.Question{}, fmt.Errorf("correct option %d out of %d options",
			row.CorrectOption, len(rawOptions))
	}
	return exam.NewQuestion(row.ID.String(), row.Subject, row.Text,
		rawOptions, row.CorrectOption, row.Explanation), nil
}
