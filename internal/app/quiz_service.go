package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/metrics"
	"category-quiz-service/internal/quiz"
)

// SessionRepository abstracts where per-user quiz engines live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(userID string, create func() *quiz.Engine) *quiz.Engine
	Get(userID string) (*quiz.Engine, bool)
	Delete(userID string)
}

// QuestionRepository loads question sets per category (from cache/backing store).
type QuestionRepository interface {
	QuestionsByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error)
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionRepository
	submitter quiz.Submitter
	opts      quiz.Options
}

func NewQuizService(sessions SessionRepository, questions QuestionRepository, submitter quiz.Submitter, opts quiz.Options) *QuizService {
	return &QuizService{sessions: sessions, questions: questions, submitter: submitter, opts: opts}
}

func (s *QuizService) engine(userID string) *quiz.Engine {
	return s.sessions.GetOrCreate(userID, func() *quiz.Engine {
		return quiz.NewEngine(userID, s.questions, s.submitter, s.opts)
	})
}

// Start selects a category and loads its questions.
func (s *QuizService) Start(ctx context.Context, userID string, category domain.Category) (quiz.View, error) {
	engine := s.engine(userID)
	if err := engine.SelectCategory(ctx, category); err != nil {
		return quiz.Render(engine.Snapshot()), err
	}
	metrics.SessionsStarted.WithLabelValues(string(category)).Inc()
	return quiz.Render(engine.Snapshot()), nil
}

// Answer submits an answer label for the user's current question.
func (s *QuizService) Answer(_ context.Context, userID, label string) (quiz.Outcome, quiz.View, error) {
	engine, ok := s.sessions.Get(userID)
	if !ok {
		return quiz.Outcome{}, quiz.View{}, domain.ErrSessionNotFound
	}
	outcome, err := engine.SubmitAnswer(label)
	if err != nil {
		return quiz.Outcome{}, quiz.Render(engine.Snapshot()), err
	}
	result := "wrong"
	if outcome.Correct {
		result = "correct"
	}
	metrics.Answers.WithLabelValues(result).Inc()
	return outcome, quiz.Render(engine.Snapshot()), nil
}

// Restart returns a finished session to the category chooser.
func (s *QuizService) Restart(_ context.Context, userID string) (quiz.View, error) {
	engine, ok := s.sessions.Get(userID)
	if !ok {
		return quiz.View{}, domain.ErrSessionNotFound
	}
	err := engine.Restart()
	return quiz.Render(engine.Snapshot()), err
}

// View renders the user's current session, creating an idle one if needed.
func (s *QuizService) View(_ context.Context, userID string) quiz.View {
	return quiz.Render(s.engine(userID).Snapshot())
}

// Subscribe streams the user's session changes.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, userID string) (<-chan quiz.Snapshot, func()) {
	return s.engine(userID).Subscribe()
}

// Abandon cancels any pending transition of the user's session, ends its
// subscriptions and drops it.
func (s *QuizService) Abandon(_ context.Context, userID string) {
	engine, ok := s.sessions.Get(userID)
	if !ok {
		return
	}
	s.sessions.Delete(userID)
	engine.Close()
}

// ScoreRecorder persists the score of a finished session. It implements quiz.Submitter.
//
// Scores are applied with the store's atomic increment, so concurrent sessions of the
// same user cannot lose each other's points.
type ScoreRecorder struct {
	profiles ProfileStore
	events   EventPublisher
}

func NewScoreRecorder(profiles ProfileStore, events EventPublisher) *ScoreRecorder {
	if events == nil {
		events = NopPublisher{}
	}
	return &ScoreRecorder{profiles: profiles, events: events}
}

func (r *ScoreRecorder) SubmitScore(ctx context.Context, sub domain.ScoreSubmission) error {
	if err := r.profiles.AddScore(ctx, sub.UserID, sub.Category, sub.FinalScore); err != nil {
		metrics.ScoreSubmissionFailures.Inc()
		return fmt.Errorf("add score: %w", err)
	}
	if err := r.profiles.AppendScoreEvent(ctx, sub); err != nil {
		metrics.ScoreSubmissionFailures.Inc()
		return fmt.Errorf("append score event: %w", err)
	}
	metrics.ScoresRecorded.WithLabelValues(string(sub.Category)).Inc()

	if err := r.events.PublishScoreSubmitted(ctx, sub); err != nil {
		log.Printf("publish score event %s: %v", sub.ID, err)
	}
	return nil
}

// EventPublisher fans score events out to other services.
type EventPublisher interface {
	PublishScoreSubmitted(ctx context.Context, sub domain.ScoreSubmission) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishScoreSubmitted(context.Context, domain.ScoreSubmission) error { return nil }
func (NopPublisher) Close() error                                                        { return nil }

// IsStateError reports whether err is a session state violation rather than a store failure.
func IsStateError(err error) bool {
	return errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrInvalidLabel)
}
