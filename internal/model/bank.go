package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BankQuestion is a question-bank row. Options is stored as a JSON array;
// elements may be plain strings or {"text": ...} objects, normalized at
// ingestion into the exam core.
type BankQuestion struct {
	ID            uuid.UUID       `json:"id"`
	Subject       string          `json:"subject"`
	Difficulty    string          `json:"difficulty"`
	Text          string          `json:"text"`
	Options       json.RawMessage `json:"options"`
	CorrectOption int             `json:"correct_option"`
	Explanation   string          `json:"explanation,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AddBankQuestionRequest is the payload for adding a bank question.
type AddBankQuestionRequest struct {
	Subject       string          `json:"subject" binding:"required,min=1,max=100"`
	Difficulty    string          `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Text          string          `json:"text" binding:"required,min=1,max=4000"`
	Options       json.RawMessage `json:"options" binding:"required"`
	CorrectOption int             `json:"correct_option" binding:"min=0"`
	Explanation   string          `json:"explanation" binding:"max=4000"`
}

// GuestLoginRequest is the payload for obtaining a practice token.
type GuestLoginRequest struct {
	StudentName string `json:"student_name" binding:"required,min=2,max=100"`
	AccessCode  string `json:"access_code" binding:"required,min=4,max=64"`
}
