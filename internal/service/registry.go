package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
)

// Registry errors.
var (
	ErrNoActiveSession = errors.New("no active practice session")
	ErrSessionActive   = errors.New("a practice session is already in progress")
)

// SessionEvent is pushed to WebSocket subscribers of an active session.
type SessionEvent struct {
	Kind             string `json:"kind"` // "tick" or "submitted"
	RemainingSeconds int    `json:"remaining_seconds"`
	ScorePercent     int    `json:"score_percent,omitempty"`
	Grade            string `json:"grade,omitempty"`
}

// ActiveSession ties a live exam session to its countdown, its owner and,
// after submission, its outcome. One per student at a time.
type ActiveSession struct {
	ID          uuid.UUID
	StudentID   string
	StudentName string
	Subjects    []string
	Difficulty  string
	StartedAt   time.Time
	Exam        *exam.Session
	Countdown   *exam.Countdown

	mu          sync.Mutex
	subscribers map[chan SessionEvent]struct{}
	result      *exam.Result
	review      []exam.ReviewEntry
	completion  model.CompletionType
	finishedAt  time.Time
}

// Subscribe registers a listener for tick/submitted events. The returned
// cancel func must be called when the listener goes away.
func (a *ActiveSession) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 8)

	a.mu.Lock()
	if a.subscribers == nil {
		a.subscribers = make(map[chan SessionEvent]struct{})
	}
	a.subscribers[ch] = struct{}{}
	a.mu.Unlock()

	return ch, func() {
		a.mu.Lock()
		delete(a.subscribers, ch)
		a.mu.Unlock()
	}
}

// Broadcast fans an event out to all subscribers. Slow consumers lose
// events rather than block the countdown goroutine.
func (a *ActiveSession) Broadcast(ev SessionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ch := range a.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SetOutcome records the scored result once. Later calls are ignored, which
// backs up the exactly-once submission guarantee of the exam core.
func (a *ActiveSession) SetOutcome(result *exam.Result, review []exam.ReviewEntry, completion model.CompletionType) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result != nil {
		return
	}
	a.result = result
	a.review = review
	a.completion = completion
	a.finishedAt = time.Now()
}

// Outcome returns the scored result, or ok=false while still in progress.
func (a *ActiveSession) Outcome() (result *exam.Result, review []exam.ReviewEntry, completion model.CompletionType, finishedAt time.Time, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return nil, nil, "", time.Time{}, false
	}
	return a.result, a.review, a.completion, a.finishedAt, true
}

// Registry holds every resident practice session, one per student. It owns
// session lifecycle: admission, lookup, teardown of countdowns, and a
// background reaper that evicts submitted sessions after the grace period
// so an abandoned browser tab cannot leak a session (or its timer) forever.
type Registry struct {
	mu        sync.RWMutex
	byStudent map[string]*ActiveSession
	grace     time.Duration
	log       zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(grace time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		byStudent: make(map[string]*ActiveSession),
		grace:     grace,
		log:       log.With().Str("component", "session_registry").Logger(),
	}
}

// Put admits a new active session. A student with a session still in
// progress is rejected; a leftover submitted session is torn down and
// replaced.
func (r *Registry) Put(a *ActiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byStudent[a.StudentID]; ok {
		if existing.Exam.Status() == exam.StatusInProgress {
			return ErrSessionActive
		}
		existing.Countdown.Stop()
	}

	r.byStudent[a.StudentID] = a
	return nil
}

// Get returns the student's resident session.
func (r *Registry) Get(studentID string) (*ActiveSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byStudent[studentID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return a, nil
}

// Remove tears down and evicts the student's session, whatever its state.
// Used when a student abandons an attempt outright.
func (r *Registry) Remove(studentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.byStudent[studentID]; ok {
		a.Countdown.Stop()
		delete(r.byStudent, studentID)
	}
}

// Len reports how many sessions are resident.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byStudent)
}

// Start runs the reaper loop until ctx is cancelled. Call in a goroutine.
func (r *Registry) Start(ctx context.Context) {
	r.log.Info().Dur("grace", r.grace).Msg("Session reaper started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Session reaper stopping")
			r.teardownAll()
			return
		case <-ticker.C:
			r.reap()
		}
	}
}

func (r *Registry) reap() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for studentID, a := range r.byStudent {
		_, _, _, finishedAt, done := a.Outcome()
		if !done || now.Sub(finishedAt) < r.grace {
			continue
		}
		a.Countdown.Stop()
		delete(r.byStudent, studentID)
		r.log.Debug().Str("student_id", studentID).Msg("Reaped submitted session")
	}
}

func (r *Registry) teardownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for studentID, a := range r.byStudent {
		a.Countdown.Stop()
		delete(r.byStudent, studentID)
	}
}
