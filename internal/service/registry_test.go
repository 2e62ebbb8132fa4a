package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
)

func newActive(t *testing.T, studentID string) *ActiveSession {
	t.Helper()

	sess, err := exam.NewSession([]exam.Question{
		{ID: "q1", Subject: "Math", Text: "1+1?", Options: []string{"1", "2"}, CorrectOption: 1},
	}, 300)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	a := &ActiveSession{
		ID:        uuid.New(),
		StudentID: studentID,
		StartedAt: time.Now(),
		Exam:      sess,
	}
	a.Countdown = exam.NewCountdown(sess, func(*exam.Snapshot) {})
	return a
}

func TestRegistryPutRejectsInProgressDuplicate(t *testing.T) {
	r := NewRegistry(time.Hour, zerolog.Nop())

	if err := r.Put(newActive(t, "s1")); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := r.Put(newActive(t, "s1")); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Put err = %v, want ErrSessionActive", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryPutReplacesSubmittedSession(t *testing.T) {
	r := NewRegistry(time.Hour, zerolog.Nop())

	old := newActive(t, "s1")
	if err := r.Put(old); err != nil {
		t.Fatalf("Put: %v", err)
	}
	old.Exam.Submit()

	fresh := newActive(t, "s1")
	if err := r.Put(fresh); err != nil {
		t.Fatalf("replacement Put: %v", err)
	}

	got, err := r.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != fresh.ID {
		t.Fatal("registry should hold the replacement session")
	}
}

func TestRegistryGetUnknownStudent(t *testing.T) {
	r := NewRegistry(time.Hour, zerolog.Nop())

	if _, err := r.Get("nobody"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(time.Hour, zerolog.Nop())

	if err := r.Put(newActive(t, "s1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	r.Remove("s1")
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}

	// Removing an unknown student is a no-op.
	r.Remove("s1")
}

func TestRegistryReapEvictsAfterGrace(t *testing.T) {
	r := NewRegistry(0, zerolog.Nop())

	submitted := newActive(t, "done")
	if err := r.Put(submitted); err != nil {
		t.Fatalf("Put submitted: %v", err)
	}
	snap := submitted.Exam.Submit()
	result, err := exam.Score(snap.Questions, snap.Answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	submitted.SetOutcome(result, nil, model.CompletionManual)

	running := newActive(t, "busy")
	if err := r.Put(running); err != nil {
		t.Fatalf("Put running: %v", err)
	}

	r.reap()

	if _, err := r.Get("done"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatal("submitted session past its grace should be reaped")
	}
	if _, err := r.Get("busy"); err != nil {
		t.Fatal("in-progress session must survive the reaper")
	}
}

func TestRegistryReapHonorsGracePeriod(t *testing.T) {
	r := NewRegistry(time.Hour, zerolog.Nop())

	a := newActive(t, "s1")
	if err := r.Put(a); err != nil {
		t.Fatalf("Put: %v", err)
	}
	snap := a.Exam.Submit()
	result, err := exam.Score(snap.Questions, snap.Answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	a.SetOutcome(result, nil, model.CompletionManual)

	r.reap()

	if _, err := r.Get("s1"); err != nil {
		t.Fatal("freshly submitted session must be kept for result reads")
	}
}

func TestActiveSessionSubscribeAndBroadcast(t *testing.T) {
	a := newActive(t, "s1")

	events, cancel := a.Subscribe()
	a.Broadcast(SessionEvent{Kind: "tick", RemainingSeconds: 42})

	select {
	case ev := <-events:
		if ev.Kind != "tick" || ev.RemainingSeconds != 42 {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	// After cancel the subscriber is gone; broadcasting must not panic.
	a.Broadcast(SessionEvent{Kind: "tick", RemainingSeconds: 41})
}

func TestActiveSessionSetOutcomeIsWriteOnce(t *testing.T) {
	a := newActive(t, "s1")

	first := &exam.Result{ScorePercent: 10, Grade: "F"}
	a.SetOutcome(first, nil, model.CompletionManual)
	a.SetOutcome(&exam.Result{ScorePercent: 90, Grade: "A"}, nil, model.CompletionTimeout)

	result, _, completion, _, ok := a.Outcome()
	if !ok {
		t.Fatal("outcome should be set")
	}
	if result.ScorePercent != 10 || completion != model.CompletionManual {
		t.Fatal("second SetOutcome must not overwrite the first")
	}
}
