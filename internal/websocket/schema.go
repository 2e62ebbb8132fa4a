package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionFlag     Action = "flag"
	ActionNavigate Action = "navigate"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest selects or clears an answer. A null option clears it.
type AnswerRequest struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
	OptionIndex   *int   `json:"option_index"`
}

// FlagRequest toggles the review flag on a question.
type FlagRequest struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
}

// NavigateRequest moves the session cursor.
type NavigateRequest struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventTick      Event = "tick"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

type SavedResponse struct {
	Event         Event `json:"event"`
	QuestionIndex int   `json:"question_index"`
}

// TickResponse carries the server-authoritative remaining time.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// SubmittedResponse announces the finished attempt; the client fetches
// the full review over HTTP.
type SubmittedResponse struct {
	Event        Event  `json:"event"`
	ScorePercent int    `json:"score_percent"`
	Grade        string `json:"grade"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
