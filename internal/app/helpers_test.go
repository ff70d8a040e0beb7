package app_test

import (
	"sync"
	"time"

	"category-quiz-service/internal/app"
	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/infra/memory"
	"category-quiz-service/internal/quiz"
)

// queueScheduler holds scheduled transitions until drain runs them.
type queueScheduler struct {
	mu      sync.Mutex
	pending []*queuedTimer
}

type queuedTimer struct {
	f       func()
	stopped bool
}

func (t *queuedTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *queueScheduler) AfterFunc(_ time.Duration, f func()) quiz.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &queuedTimer{f: f}
	s.pending = append(s.pending, t)
	return t
}

// step runs the oldest live timer and reports whether one ran.
func (s *queueScheduler) step() bool {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return false
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		if next.stopped {
			continue
		}
		next.f()
		return true
	}
}

func (s *queueScheduler) drain() {
	for s.step() {
	}
}

type harness struct {
	scheduler *queueScheduler
	profiles  *memory.ProfileStore
	accounts  *memory.AccountStore
	objects   *memory.ObjectStore
	quizzes   *app.QuizService
	boards    *app.LeaderboardService
	profile   *app.ProfileService
	auth      *app.AuthService
}

func newHarness(questions []domain.Question) *harness {
	h := &harness{
		scheduler: &queueScheduler{},
		profiles:  memory.NewProfileStore(),
		accounts:  memory.NewAccountStore(),
		objects:   memory.NewObjectStore("http://localhost/uploads"),
	}
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), time.Minute)
	h.quizzes = app.NewQuizService(memory.NewSessionStore(), repo, app.NewScoreRecorder(h.profiles, nil), quiz.Options{
		Scheduler: h.scheduler,
		Shuffle:   func(int, func(i, j int)) {},
	})
	h.boards = app.NewLeaderboardService(h.profiles, time.Second)
	h.profile = app.NewProfileService(h.profiles, h.objects, time.Second)
	h.auth = app.NewAuthService(h.accounts, h.profiles, auth.NewTokens("test-secret", time.Hour),
		memory.NewAttemptLimiter(3, time.Minute), h.quizzes, app.AuthOptions{DefaultPicture: "default.png", StoreTimeout: time.Second})
	return h
}

func sportQuestions() []domain.Question {
	return []domain.Question{
		{ID: "s1", Category: domain.Sport, Prompt: "Players in a football team?", Options: [4]string{"10", "11", "12", "9"}, Correct: "b"},
		{ID: "s2", Category: domain.Sport, Prompt: "Grand slams per year?", Options: [4]string{"3", "5", "4", "2"}, Correct: "c"},
		{ID: "s3", Category: domain.Sport, Prompt: "Olympic rings?", Options: [4]string{"5", "6", "4", "7"}, Correct: "a"},
	}
}
