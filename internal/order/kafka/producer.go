package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ms-linkmarket/internal/config"
	"ms-linkmarket/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
	topics config.TopicConfig
}

// NewProducer builds a topic-less writer; each publish names its topic from
// the configured set.
func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, topics: topics}
}

type orderEvent struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

func (p *Producer) publish(topic, eventType string, order models.Order) error {
	msgBytes, err := json.Marshal(orderEvent{Type: eventType, Order: order})
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(order.OrderID),
			Value: msgBytes,
		},
	)
}

// PublishOrderCreated streams the order creation event
func (p *Producer) PublishOrderCreated(order models.Order) error {
	return p.publish(p.topics.OrderCreated, "order_created", order)
}

// PublishOrderStatusChanged streams a lifecycle transition
func (p *Producer) PublishOrderStatusChanged(order models.Order) error {
	return p.publish(p.topics.OrderStatusChanged, "order_status_changed", order)
}

// PublishOrderContentUpdated streams a briefing/anchor/target edit
func (p *Producer) PublishOrderContentUpdated(order models.Order) error {
	return p.publish(p.topics.OrderContentUpdated, "order_content_updated", order)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
