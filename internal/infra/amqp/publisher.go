package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"english-quiz-service/internal/domain"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RoutingKeyFinished is the routing key of quiz.finished events.
const RoutingKeyFinished = "quiz.finished"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher announces finished quizzes on a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	log      *zap.Logger
}

type event struct {
	Type    string            `json:"type"`
	Payload domain.QuizResult `json:"payload"`
}

// Dial connects to the broker and declares a durable topic exchange.
func Dial(url, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	p := newPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{channel: ch, exchange: exchange, log: log}
}

// Publish sends one quiz.finished event.
func (p *Publisher) Publish(result domain.QuizResult) error {
	body, err := json.Marshal(event{Type: RoutingKeyFinished, Payload: result})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.channel.Publish(p.exchange, RoutingKeyFinished, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    result.ID,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// ResultRecorded implements app.ResultListener; failures are logged only.
func (p *Publisher) ResultRecorded(_ context.Context, result domain.QuizResult) {
	if err := p.Publish(result); err != nil {
		p.log.Warn("publish quiz.finished failed",
			zap.String("result_id", result.ID),
			zap.Error(err),
		)
	}
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
