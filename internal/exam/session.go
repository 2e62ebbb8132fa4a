package exam

import (
	"sort"
	"sync"
)

// Status is the lifecycle state of a practice session.
type Status string

const (
	StatusSetup      Status = "SETUP"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
)

// Snapshot is the immutable (questions, answers) pair a session emits on
// submission. It is the sole input to scoring; the session itself never
// touches the network or the database.
type Snapshot struct {
	Questions []Question
	Answers   map[int]int
	TimedOut  bool
}

// Session owns one in-progress exam attempt: the fixed question list, the
// cursor, the partial answer map, the flagged set and the countdown value.
// All methods are safe for concurrent use; the countdown goroutine and the
// HTTP/WS handlers funnel through the same mutex.
type Session struct {
	mu        sync.Mutex
	questions []Question
	current   int
	answers   map[int]int
	flagged   map[int]struct{}
	remaining int
	status    Status
	timedOut  bool
}

// NewSession creates a session in IN_PROGRESS with a full time budget.
// Returns ErrInvalidConfiguration when the question list is empty, the time
// limit is non-positive, or any question's correct option is out of bounds.
func NewSession(questions []Question, totalTimeSeconds int) (*Session, error) {
	if len(questions) == 0 || totalTimeSeconds <= 0 {
		return nil, ErrInvalidConfiguration
	}
	for _, q := range questions {
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return nil, ErrInvalidConfiguration
		}
	}

	qs := make([]Question, len(questions))
	copy(qs, questions)

	return &Session{
		questions: qs,
		answers:   make(map[int]int),
		flagged:   make(map[int]struct{}),
		remaining: totalTimeSeconds,
		status:    StatusInProgress,
	}, nil
}

// SelectAnswer records (or overwrites) the chosen option for a question.
// The option index is deliberately not range-checked: an out-of-range value
// can never equal the correct option, so it simply scores as wrong.
func (s *Session) SelectAnswer(questionIndex, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrInvalidState
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.answers[questionIndex] = optionIndex
	return nil
}

// ClearAnswer removes a previously selected answer, returning the question
// to the unanswered state. Clearing an unanswered question is a no-op.
func (s *Session) ClearAnswer(questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrInvalidState
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	delete(s.answers, questionIndex)
	return nil
}

// ToggleFlag adds the question to the review-flag set, or removes it if
// already present.
func (s *Session) ToggleFlag(questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrInvalidState
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	if _, ok := s.flagged[questionIndex]; ok {
		delete(s.flagged, questionIndex)
	} else {
		s.flagged[questionIndex] = struct{}{}
	}
	return nil
}

// NavigateTo moves the cursor. Out-of-range targets fail without side
// effects — a caller bug, not something to clamp silently.
func (s *Session) NavigateTo(questionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return ErrInvalidState
	}
	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.current = questionIndex
	return nil
}

// Tick advances the countdown by elapsed whole seconds, clamped at zero.
// When the clock hits zero this call performs the submit transition itself
// and returns the final snapshot; every later call is a no-op. The returned
// snapshot is non-nil exactly once across the session's lifetime (and never
// if Submit was called first).
func (s *Session) Tick(secondsElapsed int) (remaining int, snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress || secondsElapsed <= 0 {
		return s.remaining, nil
	}

	s.remaining -= secondsElapsed
	if s.remaining > 0 {
		return s.remaining, nil
	}

	s.remaining = 0
	s.timedOut = true
	return 0, s.submitLocked()
}

// Submit transitions to SUBMITTED and returns the final snapshot. If the
// session is already submitted the call is a no-op and returns nil, so the
// caller scores at most once however the race between a manual submit and
// the final tick resolves.
func (s *Session) Submit() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return nil
	}
	return s.submitLocked()
}

// submitLocked performs the one-way transition. Caller holds s.mu.
func (s *Session) submitLocked() *Snapshot {
	s.status = StatusSubmitted

	answers := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return &Snapshot{
		Questions: s.questions,
		Answers:   answers,
		TimedOut:  s.timedOut,
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// CurrentIndex returns the cursor position.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TimedOut reports whether submission was forced by the countdown.
func (s *Session) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

// Questions returns the session's question list. The slice is shared and
// must be treated as read-only.
func (s *Session) Questions() []Question {
	return s.questions
}

// AnswerFor returns the selected option for a question, if any.
func (s *Session) AnswerFor(questionIndex int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.answers[questionIndex]
	return v, ok
}

// Answers returns a copy of the partial answer map.
func (s *Session) Answers() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Flagged returns the flagged question indices in ascending order.
func (s *Session) Flagged() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.flagged))
	for i := range s.flagged {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
