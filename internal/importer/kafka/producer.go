package kafka

import (
	"context"
	"encoding/json"
	"ms-linkmarket/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishOutletSubmitted streams a freshly imported outlet for downstream
// review tooling and notifications.
func (p *Producer) PublishOutletSubmitted(outlet models.MediaOutlet) error {
	msgBytes, err := json.Marshal(outlet)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(outlet.Domain),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
