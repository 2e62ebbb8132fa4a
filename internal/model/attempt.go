package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CompletionType records how a practice session ended. Both paths score
// identically; the distinction is purely informational.
type CompletionType string

const (
	CompletionManual  CompletionType = "MANUAL"
	CompletionTimeout CompletionType = "TIMEOUT"
)

// Attempt is a persisted record of a submitted practice session.
type Attempt struct {
	ID             uuid.UUID       `json:"id"`
	StudentID      string          `json:"student_id"`
	StudentName    string          `json:"student_name"`
	TotalQuestions int             `json:"total_questions"`
	CorrectCount   int             `json:"correct_count"`
	ScorePercent   int             `json:"score_percent"`
	Grade          string          `json:"grade"`
	PerSubject     json.RawMessage `json:"per_subject"`
	CompletionType CompletionType  `json:"completion_type"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}
