package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	TopicOrderCreated    = "order.created"
	TopicOrderPaid       = "order.paid"
	TopicOrderDispatched = "order.dispatched"
	TopicOrderCancelled  = "order.cancelled"
)

// OrderEvent is the payload published on every order lifecycle topic.
// Messages are keyed by order ID so one order's events stay in partition
// order.
type OrderEvent struct {
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Producer publishes order lifecycle events to Kafka.
type Producer struct {
	client *kgo.Client
}

// NewProducer connects to the given seed brokers.
func NewProducer(brokers []string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.Lz4Compression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Producer{client: client}, nil
}

func (p *Producer) PublishOrderCreated(ctx context.Context, orderID string) error {
	return p.publish(ctx, TopicOrderCreated, orderID)
}

func (p *Producer) PublishOrderPaid(ctx context.Context, orderID string) error {
	return p.publish(ctx, TopicOrderPaid, orderID)
}

func (p *Producer) PublishOrderDispatched(ctx context.Context, orderID string) error {
	return p.publish(ctx, TopicOrderDispatched, orderID)
}

func (p *Producer) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return p.publish(ctx, TopicOrderCancelled, orderID)
}

func (p *Producer) publish(ctx context.Context, topic, orderID string) error {
	value, err := json.Marshal(OrderEvent{OrderID: orderID, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(orderID),
		Value: value,
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
