package produce

import (
	"context"
	"fmt"

	"github.com/JrMarcco/connector/internal/pkg/xmq"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter 为 kafka.Writer 的写入能力。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

var _ Producer = (*KafkaProducer)(nil)

type KafkaProducer struct {
	writer MessageWriter
	logger *zap.Logger
}

func (p *KafkaProducer) Produce(ctx context.Context, msg *xmq.Message) error {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for key, val := range msg.Headers {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(val)})
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Val,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("failed to produce message to topic [ %s ]: %w", msg.Topic, err)
	}

	p.logger.Debug(
		"[connector-xmq-producer] successfully produced message to kafka",
		zap.String("topic", msg.Topic),
		zap.ByteString("key", msg.Key),
		zap.Int("value_len", len(msg.Val)),
	)
	return nil
}

func NewKafkaProducer(writer MessageWriter, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: writer,
		logger: logger,
	}
}
