package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"category-quiz-service/internal/domain"
)

func TestDisabledPublisherIsNoop(t *testing.T) {
	p, err := NewPublisher("")
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := p.PublishScoreSubmitted(context.Background(), domain.ScoreSubmission{ID: "s1"}); err != nil {
		t.Fatalf("expected disabled publish to succeed, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestScoreEventBody(t *testing.T) {
	at := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	ev := NewScoreEvent(domain.ScoreSubmission{ID: "s1", UserID: "u1", Category: domain.Sport, FinalScore: 7, Timestamp: at})

	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["scoreField"] != "sport_points" || decoded["finalScore"] != float64(7) || decoded["eventType"] != "score.submitted" {
		t.Fatalf("unexpected body %s", raw)
	}
}
