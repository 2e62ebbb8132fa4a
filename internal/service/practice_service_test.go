package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/config"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/questionsource"
)

type stubSource struct {
	paper *questionsource.Paper
	err   error
}

func (s *stubSource) Generate(ctx context.Context, req questionsource.Request) (*questionsource.Paper, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.paper, nil
}

func testPaper() *questionsource.Paper {
	return &questionsource.Paper{
		Questions: []exam.Question{
			{ID: "m1", Subject: "Math", Text: "2+2?", Options: []string{"3", "4"}, CorrectOption: 1},
			{ID: "m2", Subject: "Math", Text: "3*3?", Options: []string{"9", "6"}, CorrectOption: 0},
			{ID: "e1", Subject: "English", Text: "Plural of mouse?", Options: []string{"mouses", "mice"}, CorrectOption: 1},
		},
		Subjects: []string{"Math", "English"},
	}
}

func newTestPracticeService(t *testing.T) (*PracticeService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	registry := NewRegistry(30*time.Minute, zerolog.Nop())
	svc := NewPracticeService(&stubSource{paper: testPaper()}, registry, nil, rdb, zerolog.Nop())
	return svc, mr
}

func setupRequest() model.SetupRequest {
	return model.SetupRequest{
		Subjects: []model.SubjectSpec{
			{Name: "Math", Count: 2},
			{Name: "English", Count: 1},
		},
		Difficulty:       "easy",
		TotalTimeSeconds: 600,
	}
}

func TestStartSessionCreatesActiveSession(t *testing.T) {
	svc, mr := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	if active.Exam.Status() != exam.StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", active.Exam.Status())
	}
	if !mr.Exists(config.CacheKey.PracticeSessionKey("s1")) {
		t.Fatal("session mirror missing in redis")
	}
}

func TestStartSessionRejectsSecondActive(t *testing.T) {
	svc, _ := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("first StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	if _, err := svc.StartSession(ctx, "s1", "Alice", setupRequest()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second StartSession err = %v, want ErrSessionActive", err)
	}
}

func TestStartSessionSourceFailureLeavesNoSession(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	registry := NewRegistry(30*time.Minute, zerolog.Nop())
	svc := NewPracticeService(&stubSource{err: questionsource.ErrInsufficientQuestions}, registry, nil, rdb, zerolog.Nop())

	if _, err := svc.StartSession(context.Background(), "s1", "Alice", setupRequest()); !errors.Is(err, questionsource.ErrInsufficientQuestions) {
		t.Fatalf("err = %v, want ErrInsufficientQuestions", err)
	}
	if _, err := registry.Get("s1"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatal("failed setup must not register a session")
	}
}

func TestSelectAnswerMirrorsToRedis(t *testing.T) {
	svc, mr := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	opt := 1
	if err := svc.SelectAnswer(ctx, "s1", 0, &opt); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if got := mr.HGet(config.CacheKey.PracticeAnswersKey("s1"), "0"); got != "1" {
		t.Fatalf("answer mirror = %q, want %q", got, "1")
	}

	// Clearing removes both the session answer and the mirror field.
	if err := svc.SelectAnswer(ctx, "s1", 0, nil); err != nil {
		t.Fatalf("clear answer: %v", err)
	}
	if _, ok := active.Exam.AnswerFor(0); ok {
		t.Fatal("answer should be cleared")
	}
	if got := mr.HGet(config.CacheKey.PracticeAnswersKey("s1"), "0"); got != "" {
		t.Fatalf("mirror field should be deleted, got %q", got)
	}
}

func TestSelectAnswerWithoutSession(t *testing.T) {
	svc, _ := newTestPracticeService(t)

	opt := 0
	if err := svc.SelectAnswer(context.Background(), "nobody", 0, &opt); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestStateReflectsSessionProgress(t *testing.T) {
	svc, _ := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	opt := 1
	if err := svc.SelectAnswer(ctx, "s1", 0, &opt); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := svc.ToggleFlag("s1", 2); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if err := svc.Navigate("s1", 2); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	state, err := svc.State("s1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Status != string(exam.StatusInProgress) {
		t.Fatalf("status = %s", state.Status)
	}
	if len(state.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(state.Questions))
	}
	if state.Answers[0] != 1 {
		t.Fatalf("answers[0] = %d, want 1", state.Answers[0])
	}
	if len(state.Flagged) != 1 || state.Flagged[0] != 2 {
		t.Fatalf("flagged = %v, want [2]", state.Flagged)
	}
	if state.CurrentIndex != 2 {
		t.Fatalf("current index = %d, want 2", state.CurrentIndex)
	}
}

func TestSubmitScoresAndEnqueuesAttempt(t *testing.T) {
	svc, mr := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	// 2 of 3 correct: q0=1 (correct), q1=1 (wrong), q2=1 (correct).
	for i, opt := range []int{1, 1, 1} {
		o := opt
		if err := svc.SelectAnswer(ctx, "s1", i, &o); err != nil {
			t.Fatalf("SelectAnswer(%d): %v", i, err)
		}
	}

	view, err := svc.Submit(ctx, "s1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if view.Result.CorrectCount != 2 || view.Result.ScorePercent != 67 {
		t.Fatalf("result = %d correct, %d%%, want 2 correct, 67%%", view.Result.CorrectCount, view.Result.ScorePercent)
	}
	if view.CompletionType != model.CompletionManual {
		t.Fatalf("completion = %s, want MANUAL", view.CompletionType)
	}
	if len(view.Review) != 3 {
		t.Fatalf("review entries = %d, want 3", len(view.Review))
	}

	// The attempt lands on the persistence queue for the worker.
	payloads, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	if err != nil {
		t.Fatalf("queue read: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("queued attempts = %d, want 1", len(payloads))
	}
	var attempt model.Attempt
	if err := json.Unmarshal([]byte(payloads[0]), &attempt); err != nil {
		t.Fatalf("attempt payload: %v", err)
	}
	if attempt.StudentID != "s1" || attempt.CorrectCount != 2 {
		t.Fatalf("attempt = %+v", attempt)
	}
	if attempt.CompletionType != model.CompletionManual {
		t.Fatalf("attempt completion = %s", attempt.CompletionType)
	}

	// The answer mirror is cleaned up on submission.
	if mr.Exists(config.CacheKey.PracticeAnswersKey("s1")) {
		t.Fatal("answer mirror should be removed after submit")
	}
}

func TestSubmitTwiceReturnsSameOutcome(t *testing.T) {
	svc, mr := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	first, err := svc.Submit(ctx, "s1")
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := svc.Submit(ctx, "s1")
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if first.SessionID != second.SessionID || first.Result.ScorePercent != second.Result.ScorePercent {
		t.Fatal("repeat submit must return the original outcome")
	}

	// Exactly one attempt is enqueued no matter how often submit is called.
	payloads, err := mr.List(config.WorkerKey.PersistAttemptsQueue)
	if err != nil {
		t.Fatalf("queue read: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("queued attempts = %d, want 1", len(payloads))
	}
}

func TestResultBeforeSubmit(t *testing.T) {
	svc, _ := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	if _, err := svc.Result("s1"); !errors.Is(err, exam.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestMutationsRejectedAfterSubmit(t *testing.T) {
	svc, _ := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	if _, err := svc.Submit(ctx, "s1"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	opt := 0
	if err := svc.SelectAnswer(ctx, "s1", 0, &opt); !errors.Is(err, exam.ErrInvalidState) {
		t.Fatalf("SelectAnswer err = %v, want ErrInvalidState", err)
	}
	if err := svc.ToggleFlag("s1", 0); !errors.Is(err, exam.ErrInvalidState) {
		t.Fatalf("ToggleFlag err = %v, want ErrInvalidState", err)
	}
}

func TestAbandonRemovesSessionAndMirrors(t *testing.T) {
	svc, mr := newTestPracticeService(t)
	ctx := context.Background()

	if _, err := svc.StartSession(ctx, "s1", "Alice", setupRequest()); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	opt := 1
	if err := svc.SelectAnswer(ctx, "s1", 0, &opt); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	if err := svc.Abandon(ctx, "s1"); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if _, err := svc.State("s1"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("State after abandon err = %v, want ErrNoActiveSession", err)
	}
	if mr.Exists(config.CacheKey.PracticeAnswersKey("s1")) || mr.Exists(config.CacheKey.PracticeSessionKey("s1")) {
		t.Fatal("redis mirrors should be removed on abandon")
	}
}

func TestSubmittedEventBroadcastToSubscribers(t *testing.T) {
	svc, _ := newTestPracticeService(t)
	ctx := context.Background()

	active, err := svc.StartSession(ctx, "s1", "Alice", setupRequest())
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer active.Countdown.Stop()

	events, cancel := active.Subscribe()
	defer cancel()

	if _, err := svc.Submit(ctx, "s1"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == "submitted" {
				return
			}
		case <-deadline:
			t.Fatal("no submitted event received")
		}
	}
}
