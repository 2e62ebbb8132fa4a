// Package questionsource produces the question papers a practice session
// runs on. Two implementations exist: a Postgres question bank and an
// OpenAI-compatible generator. Either way the output is a fully normalized
// paper; failures surface to setup as-is, never retried or defaulted here.
package questionsource

import (
	"context"
	"errors"

	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
)

// ErrInsufficientQuestions means the source could not supply the requested
// per-subject counts.
var ErrInsufficientQuestions = errors.New("not enough questions for the requested subjects")

// Request describes the paper to produce.
type Request struct {
	Subjects   []model.SubjectSpec
	Difficulty string
}

// Paper is a generated question set ready for session initialization.
// Question order follows the subject order of the request, so per-subject
// grouping is stable through scoring.
type Paper struct {
	Questions []exam.Question
	Subjects  []string
}

// Source supplies practice papers. A single request/response call; the
// caller owns any retry policy.
type Source interface {
	Generate(ctx context.Context, req Request) (*Paper, error)
}
