package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"category-quiz-service/internal/app"
	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/infra/memory"
	"category-quiz-service/internal/quiz"
)

type testEnv struct {
	server   *httptest.Server
	profiles *memory.ProfileStore
	services Services
}

func newTestEnv(t *testing.T, questions []domain.Question) *testEnv {
	t.Helper()
	profiles := memory.NewProfileStore()
	objects := memory.NewObjectStore("http://uploads.test")
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), time.Minute)

	quizzes := app.NewQuizService(memory.NewSessionStore(), repo, app.NewScoreRecorder(profiles, nil), quiz.Options{
		RevealDelay: 10 * time.Millisecond,
		SubmitDelay: 10 * time.Millisecond,
	})
	services := Services{
		Auth: app.NewAuthService(memory.NewAccountStore(), profiles, auth.NewTokens("test-secret", time.Hour),
			memory.NewAttemptLimiter(5, time.Minute), quizzes, app.AuthOptions{DefaultPicture: "default.png"}),
		Quizzes:     quizzes,
		Leaderboard: app.NewLeaderboardService(profiles, time.Second),
		Profiles:    app.NewProfileService(profiles, objects, time.Second),
	}
	env := &testEnv{
		server:   httptest.NewServer(NewRouter(services)),
		profiles: profiles,
		services: services,
	}
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) signUp(t *testing.T, email string) app.Session {
	t.Helper()
	session, err := e.services.Auth.SignUp(context.Background(), app.SignUpRequest{
		FirstName:       "Test",
		LastName:        "User",
		BirthDate:       "1990-01-01",
		Email:           email,
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return session
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "s1", Category: domain.Sport, Prompt: "Players in a football team?", Options: [4]string{"10", "11", "12", "9"}, Correct: "b"},
	}
}
