package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/config"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/model"
	"github.com/schoolsuite/cbt-backend/internal/questionsource"
	"github.com/schoolsuite/cbt-backend/internal/repository"
)

// AttemptView is the API-facing shape of a completed attempt.
type AttemptView struct {
	SessionID      uuid.UUID            `json:"session_id"`
	Result         *exam.Result         `json:"result"`
	Review         []exam.ReviewEntry   `json:"review"`
	CompletionType model.CompletionType `json:"completion_type"`
	StartedAt      time.Time            `json:"started_at"`
	FinishedAt     time.Time            `json:"finished_at"`
}

// PracticeService orchestrates the practice flow: setup through the
// question source, live session mutations, submission, and result reads.
// The exam core does the state keeping; this service wires it to the
// registry, Redis mirrors and the persistence queue.
type PracticeService struct {
	source      questionsource.Source
	registry    *Registry
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(
	source questionsource.Source,
	registry *Registry,
	attemptRepo *repository.AttemptRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *PracticeService {
	return &PracticeService{
		source:      source,
		registry:    registry,
		attemptRepo: attemptRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "practice_service").Logger(),
	}
}

// StartSession calls the question source and admits a new session with its
// countdown running. Source failure aborts setup; no partial session is
// left behind.
func (s *PracticeService) StartSession(ctx context.Context, studentID, studentName string, req model.SetupRequest) (*ActiveSession, error) {
	// Reject early so a failed source call cannot replace a running exam.
	if existing, err := s.registry.Get(studentID); err == nil &&
		existing.Exam.Status() == exam.StatusInProgress {
		return nil, ErrSessionActive
	}

	paper, err := s.source.Generate(ctx, questionsource.Request{
		Subjects:   req.Subjects,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		return nil, fmt.Errorf("question source: %w", err)
	}

	sess, err := exam.NewSession(paper.Questions, req.TotalTimeSeconds)
	if err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	active := &ActiveSession{
		ID:          uuid.New(),
		StudentID:   studentID,
		StudentName: studentName,
		Subjects:    paper.Subjects,
		Difficulty:  req.Difficulty,
		StartedAt:   time.Now(),
		Exam:        sess,
	}
	active.Countdown = exam.NewCountdown(sess, func(snap *exam.Snapshot) {
		s.finalize(active, snap)
	})
	active.Countdown.OnTick = func(remaining int) {
		active.Broadcast(SessionEvent{Kind: "tick", RemainingSeconds: remaining})
	}

	if err := s.registry.Put(active); err != nil {
		return nil, err
	}

	// Redis mirror for observability and reload diagnostics. Best effort;
	// the in-memory session is the source of truth.
	sessKey := config.CacheKey.PracticeSessionKey(studentID)
	if err := s.rdb.HSet(ctx, sessKey,
		"session_id", active.ID.String(),
		"started_at", active.StartedAt.Unix(),
	).Err(); err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID).Msg("Session mirror write failed")
	}
	s.rdb.Del(ctx, config.CacheKey.PracticeAnswersKey(studentID))

	active.Countdown.Start()

	s.log.Info().
		Str("student_id", studentID).
		Str("session_id", active.ID.String()).
		Int("questions", len(paper.Questions)).
		Int("total_time_seconds", req.TotalTimeSeconds).
		Msg("Practice session started")

	return active, nil
}

// State returns everything a client needs to resume after a reload.
func (s *PracticeService) State(studentID string) (*model.SessionState, error) {
	active, err := s.registry.Get(studentID)
	if err != nil {
		return nil, err
	}

	questions := active.Exam.Questions()
	paper := make([]model.PaperQuestion, len(questions))
	for i, q := range questions {
		paper[i] = model.PaperQuestion{
			ID:      q.ID,
			Subject: q.Subject,
			Text:    q.Text,
			Options: q.Options,
		}
	}

	return &model.SessionState{
		Status:           string(active.Exam.Status()),
		Questions:        paper,
		CurrentIndex:     active.Exam.CurrentIndex(),
		Answers:          active.Exam.Answers(),
		Flagged:          active.Exam.Flagged(),
		RemainingSeconds: active.Exam.Remaining(),
	}, nil
}

// SelectAnswer records or clears an answer. A nil optionIndex clears.
// The Redis answer mirror tracks the session for monitoring; mirror
// failures never fail the mutation.
func (s *PracticeService) SelectAnswer(ctx context.Context, studentID string, questionIndex int, optionIndex *int) error {
	active, err := s.registry.Get(studentID)
	if err != nil {
		return err
	}

	answersKey := config.CacheKey.PracticeAnswersKey(studentID)
	field := strconv.Itoa(questionIndex)

	if optionIndex == nil {
		if err := active.Exam.ClearAnswer(questionIndex); err != nil {
			return err
		}
		if err := s.rdb.HDel(ctx, answersKey, field).Err(); err != nil {
			s.log.Warn().Err(err).Str("student_id", studentID).Msg("Answer mirror delete failed")
		}
		return nil
	}

	if err := active.Exam.SelectAnswer(questionIndex, *optionIndex); err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, answersKey, field, *optionIndex).Err(); err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID).Msg("Answer mirror write failed")
	}
	return nil
}

// ToggleFlag flips the review flag on a question.
func (s *PracticeService) ToggleFlag(studentID string, questionIndex int) error {
	active, err := s.registry.Get(studentID)
	if err != nil {
		return err
	}
	return active.Exam.ToggleFlag(questionIndex)
}

// Navigate moves the session cursor.
func (s *PracticeService) Navigate(studentID string, questionIndex int) error {
	active, err := s.registry.Get(studentID)
	if err != nil {
		return err
	}
	return active.Exam.NavigateTo(questionIndex)
}

// Submit ends the session by student action and returns the scored view.
// Submitting an already-submitted session returns the existing outcome,
// matching the idempotent submit of the exam core.
func (s *PracticeService) Submit(ctx context.Context, studentID string) (*AttemptView, error) {
	active, err := s.registry.Get(studentID)
	if err != nil {
		return nil, err
	}

	if snap := active.Exam.Submit(); snap != nil {
		s.finalize(active, snap)
	}
	return s.Result(studentID)
}

// Result returns the scored outcome of a submitted session.
func (s *PracticeService) Result(studentID string) (*AttemptView, error) {
	active, err := s.registry.Get(studentID)
	if err != nil {
		return nil, err
	}

	result, review, completion, finishedAt, ok := active.Outcome()
	if !ok {
		return nil, exam.ErrInvalidState
	}

	return &AttemptView{
		SessionID:      active.ID,
		Result:         result,
		Review:         review,
		CompletionType: completion,
		StartedAt:      active.StartedAt,
		FinishedAt:     finishedAt,
	}, nil
}

// Abandon discards the student's session entirely, stopping its countdown.
func (s *PracticeService) Abandon(ctx context.Context, studentID string) error {
	if _, err := s.registry.Get(studentID); err != nil {
		return err
	}
	s.registry.Remove(studentID)
	s.rdb.Del(ctx, config.CacheKey.PracticeAnswersKey(studentID))
	s.rdb.Del(ctx, config.CacheKey.PracticeSessionKey(studentID))

	s.log.Info().Str("student_id", studentID).Msg("Practice session abandoned")
	return nil
}

// History returns the student's persisted attempts, newest first.
func (s *PracticeService) History(ctx context.Context, studentID string, page, perPage int) ([]model.Attempt, int64, error) {
	return s.attemptRepo.ListByStudent(ctx, studentID, page, perPage)
}

// finalize scores a submission snapshot and publishes the outcome. The exam
// core emits exactly one snapshot per session, so this runs exactly once
// whether the trigger was a manual submit or the countdown expiring.
func (s *PracticeService) finalize(active *ActiveSession, snap *exam.Snapshot) {
	active.Countdown.Stop()

	result, err := exam.Score(snap.Questions, snap.Answers)
	if err != nil {
		// Unreachable for sessions the registry admitted; log and bail.
		s.log.Error().Err(err).Str("session_id", active.ID.String()).Msg("Scoring failed")
		return
	}
	review := exam.BuildReview(snap.Questions, result)

	completion := model.CompletionManual
	if snap.TimedOut {
		completion = model.CompletionTimeout
	}
	active.SetOutcome(result, review, completion)

	active.Broadcast(SessionEvent{
		Kind:         "submitted",
		ScorePercent: result.ScorePercent,
		Grade:        result.Grade,
	})

	s.enqueueAttempt(active, result, completion)

	ctx := context.Background()
	s.rdb.Del(ctx, config.CacheKey.PracticeAnswersKey(active.StudentID))
	s.rdb.Del(ctx, config.CacheKey.PracticeSessionKey(active.StudentID))

	s.log.Info().
		Str("student_id", active.StudentID).
		Str("session_id", active.ID.String()).
		Int("score_percent", result.ScorePercent).
		Str("grade", result.Grade).
		Str("completion", string(completion)).
		Msg("Practice session submitted")
}

// enqueueAttempt pushes the attempt record onto the persistence queue; the
// attempt worker writes it to Postgres out of band.
func (s *PracticeService) enqueueAttempt(active *ActiveSession, result *exam.Result, completion model.CompletionType) {
	perSubject, err := json.Marshal(result.PerSubject)
	if err != nil {
		perSubject = []byte(`[]`)
	}

	attempt := model.Attempt{
		StudentID:      active.StudentID,
		StudentName:    active.StudentName,
		TotalQuestions: result.TotalQuestions,
		CorrectCount:   result.CorrectCount,
		ScorePercent:   result.ScorePercent,
		Grade:          result.Grade,
		PerSubject:     perSubject,
		CompletionType: completion,
		StartedAt:      active.StartedAt,
		FinishedAt:     time.Now(),
	}

	payload, err := json.Marshal(attempt)
	if err != nil {
		s.log.Error().Err(err).Msg("Attempt payload marshal failed")
		return
	}
	if err := s.rdb.RPush(context.Background(), config.WorkerKey.PersistAttemptsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("student_id", active.StudentID).Msg("Attempt enqueue failed")
	}
}
