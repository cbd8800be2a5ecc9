// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"quickcart/pkg/order"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// Event is the JSON payload of one message. Order holds the state after the change.
type Event struct {
	Type       string       `json:"type"`
	OrderID    string       `json:"orderId"`
	Status     order.Status `json:"status"`
	Order      order.Order  `json:"order"`
	OccurredAt time.Time    `json:"occurredAt"`
}

func OrderCreated(o order.Order, at time.Time) Event {
	return Event{Type: TypeOrderCreated, OrderID: o.ID, Status: o.Status, Order: o, OccurredAt: at.UTC()}
}

func OrderStatusChanged(o order.Order, at time.Time) Event {
	return Event{Type: TypeOrderStatusChanged, OrderID: o.ID, Status: o.Status, Order: o, OccurredAt: at.UTC()}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes to a single topic keyed by order id, so every event of one
// order lands on the same partition.
type Kafka struct {
	w messageWriter
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(e.OrderID),
		Value:   payload,
		Headers: injectHeaders(ctx, []kafka.Header{{Key: "event-type", Value: []byte(e.Type)}}),
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for order %s: %w", e.Type, e.OrderID, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}

func injectHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otelapi.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
