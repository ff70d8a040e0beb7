package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions that reached the active state",
		},
		[]string{"category"},
	)

	Answers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answers_total",
			Help: "Submitted answers by outcome",
		},
		[]string{"result"}, // correct / wrong
	)

	ScoresRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_scores_recorded_total",
			Help: "Completed sessions whose score was written to the profile store",
		},
		[]string{"category"},
	)

	ScoreSubmissionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_score_submission_failures_total",
			Help: "Score submissions that failed and were dropped",
		},
	)

	LikesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_likes_toggled_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"action"}, // like / unlike
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Sign-in and sign-up attempts by outcome",
		},
		[]string{"kind", "status"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
