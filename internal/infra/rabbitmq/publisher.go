package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"category-quiz-service/internal/domain"
	"github.com/rabbitmq/amqp091-go"
)

const (
	Exchange              = "quiz.events"
	ScoreSubmittedRouting = "score.submitted"
)

// ScoreEvent is the message body published when a finished quiz is recorded.
type ScoreEvent struct {
	EventType  string    `json:"eventType"`
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Category   string    `json:"category"`
	ScoreField string    `json:"scoreField"`
	FinalScore int       `json:"finalScore"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewScoreEvent builds the message for a submission.
func NewScoreEvent(sub domain.ScoreSubmission) ScoreEvent {
	return ScoreEvent{
		EventType:  ScoreSubmittedRouting,
		ID:         sub.ID,
		UserID:     sub.UserID,
		Category:   string(sub.Category),
		ScoreField: string(sub.Category.ScoreField()),
		FinalScore: sub.FinalScore,
		Timestamp:  sub.Timestamp,
	}
}

// Publisher sends score events to a topic exchange. With an empty URL it is disabled.
type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	enabled bool
}

func NewPublisher(url string) (*Publisher, error) {
	if url == "" {
		log.Println("rabbitmq url is empty, event publishing is disabled")
		return &Publisher{}, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Printf("event publisher initialized with exchange %s", Exchange)
	return &Publisher{conn: conn, channel: channel, enabled: true}, nil
}

func (p *Publisher) PublishScoreSubmitted(ctx context.Context, sub domain.ScoreSubmission) error {
	if !p.enabled {
		return nil
	}
	body, err := json.Marshal(NewScoreEvent(sub))
	if err != nil {
		return fmt.Errorf("marshal score event: %w", err)
	}
	err = p.channel.PublishWithContext(ctx,
		Exchange,
		ScoreSubmittedRouting,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    sub.Timestamp,
			MessageId:    sub.ID,
			Body:         body,
			Headers: amqp091.Table{
				"event_type": ScoreSubmittedRouting,
				"user_id":    sub.UserID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish score event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		log.Printf("close channel: %v", err)
	}
	return p.conn.Close()
}
