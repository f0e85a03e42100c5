package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"travelsure/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PolicyEventsQueue carries policy lifecycle events for downstream
// consumers (notifications, analytics).
const PolicyEventsQueue = "policy_events"

// PolicyEventMessage is the payload published on every lifecycle transition.
type PolicyEventMessage struct {
	EventType    models.PolicyEventType `json:"event_type"`
	PolicyID     int64                  `json:"policy_id"`
	Holder       string                 `json:"holder"`
	FlightKey    string                 `json:"flight_key"`
	Tier         models.Tier            `json:"tier"`
	Status       models.PolicyStatus    `json:"status"`
	Premium      int64                  `json:"premium"`
	Payout       int64                  `json:"payout"`
	OccurredAt   time.Time              `json:"occurred_at"`
	FlightNumber string                 `json:"flight_number"`
}

// PolicyPublisher publishes policy lifecycle events to RabbitMQ.
type PolicyPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
}

func NewPolicyPublisher(conn *RabbitMQConnection) *PolicyPublisher {
	return &PolicyPublisher{conn: conn}
}

// PublishPolicyEvent publishes one lifecycle event to the policy_events
// queue.
func (p *PolicyPublisher) PublishPolicyEvent(ctx context.Context, eventType models.PolicyEventType, policy models.Policy) error {
	_, err := p.conn.Channel.QueueDeclare(
		PolicyEventsQueue, // queue name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msg := PolicyEventMessage{
		EventType:    eventType,
		PolicyID:     policy.ID,
		Holder:       policy.Holder,
		FlightKey:    policy.FlightKey,
		Tier:         policy.Tier,
		Status:       policy.Status,
		Premium:      policy.Premium,
		Payout:       policy.Payout,
		OccurredAt:   time.Now(),
		FlightNumber: policy.FlightNumber,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal policy event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                // exchange
		PolicyEventsQueue, // routing key (queue name)
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish policy event: %w", err)
	}

	p.messagesPublished++
	slog.Info("policy event published",
		"queue", PolicyEventsQueue,
		"event", eventType,
		"policy_id", policy.ID,
	)
	return nil
}
