// Package events publishes domain events after a commit. Publishing is best
// effort: failures are logged and never change the outcome of the operation
// that produced the event.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderPlaced = "order.placed"
	version         = "1"
)

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type OrderPlaced struct {
	OrderID   string      `json:"order_id"`
	UserID    string      `json:"user_id"`
	Total     string      `json:"total"`
	Lines     []OrderLine `json:"lines"`
	CreatedAt time.Time   `json:"created_at"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced)
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w   messageWriter
	log *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn("kafka write failed", "messages", len(msgs), "err", err)
			}
		},
	}
	return &KafkaPublisher{w: w, log: log}
}

// PublishOrderPlaced enqueues the event keyed by order id so all events of
// one order land on the same partition.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) {
	value, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("encode order event", "order_id", ev.OrderID, "err", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(TypeOrderPlaced)},
			{Key: "x-event-version", Value: []byte(version)},
		},
	}
	if err := p.w.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Warn("publish order event", "order_id", ev.OrderID, "err", err)
	}
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Noop is used when KAFKA_BROKERS is empty.
type Noop struct{}

func (Noop) PublishOrderPlaced(context.Context, OrderPlaced) {}
func (Noop) Close() error                                    { return nil }
