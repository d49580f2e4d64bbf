// Package events publishes admission outcomes to Kafka for audit and
// analytics consumption downstream. This is explicitly not a durable work
// queue (spec Non-goals: no durable queue of accepted orders) — it is a
// fire-and-forget side channel; losing an event never affects admission
// correctness, only observability.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// OrderOutcome is the JSON payload written to the topic for every admitted
// or refused order.
type OrderOutcome struct {
	TraceID   string    `json:"trace_id"`
	ClientID  int       `json:"client_id"`
	PizzaName string    `json:"pizza_name"`
	PizzaSize string    `json:"pizza_size"`
	Quantity  int       `json:"quantity"`
	Accepted  bool      `json:"accepted"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes order outcomes to Kafka asynchronously.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher configures a Writer the way the order-event producer this
// codebase is grounded on does: async, least-bytes balanced across
// partitions, since ordering across orders is not a requirement this
// stream needs to preserve.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// PublishOutcome fires the write without blocking the admission path. The
// writer's own Async mode handles batching and retry; a marshal failure or
// a dropped write is logged, never surfaced to the caller.
func (p *Publisher) PublishOutcome(ctx context.Context, evt OrderOutcome) {
	if p == nil || p.writer == nil {
		return
	}
	if evt.TraceID == "" {
		evt.TraceID = uuid.NewString()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("⚠️  order event marshal failed: %v", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(evt.TraceID),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("⚠️  order event publish failed: %v", err)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
