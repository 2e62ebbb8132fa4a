package model

// SubjectSpec is one subject line in a practice setup request.
type SubjectSpec struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Count int    `json:"count" binding:"required,min=1,max=50"`
}

// SetupRequest is the payload for starting a practice session.
type SetupRequest struct {
	Subjects         []SubjectSpec `json:"subjects" binding:"required,min=1,max=10,dive"`
	Difficulty       string        `json:"difficulty" binding:"required,oneof=easy medium hard"`
	TotalTimeSeconds int           `json:"total_time_seconds" binding:"required,min=30,max=14400"`
}

// AnswerRequest selects or clears an answer. A null option_index clears the
// stored answer, returning the question to the unanswered state.
type AnswerRequest struct {
	QuestionIndex int  `json:"question_index" binding:"min=0"`
	OptionIndex   *int `json:"option_index"`
}

// FlagRequest toggles the review flag on a question.
type FlagRequest struct {
	QuestionIndex int `json:"question_index" binding:"min=0"`
}

// NavigateRequest moves the session cursor.
type NavigateRequest struct {
	QuestionIndex int `json:"question_index" binding:"min=0"`
}

// PaperQuestion is a question as shown while the exam runs: no correct
// option, no explanation.
type PaperQuestion struct {
	ID      string   `json:"id"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// SessionState is the full recoverable state of an active session, served
// on page reload so the client can resume where it left off.
type SessionState struct {
	Status           string          `json:"status"`
	Questions        []PaperQuestion `json:"questions"`
	CurrentIndex     int             `json:"current_index"`
	Answers          map[int]int     `json:"answers"`
	Flagged          []int           `json:"flagged"`
	RemainingSeconds int             `json:"remaining_seconds"`
}
