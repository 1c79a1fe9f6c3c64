package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/prompt-general/melodex/internal/config"
)

// Producer publishes ingestion events to the event bus.
type Producer interface {
	Send(ctx context.Context, key []byte, value []byte) error
	Close() error
}

// IngestionEvent announces a completed pipeline run to downstream
// consumers.
type IngestionEvent struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

var errProducerClosed = fmt.Errorf("kafka producer is closed")

// kafkaProducer implements Producer on a Kafka topic.
type kafkaProducer struct {
	writer *kafka.Writer
	mu     sync.Mutex
	closed bool
}

// NewKafkaProducer creates a producer for the configured ingestion topic.
func NewKafkaProducer(cfg config.KafkaConfig) (Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no Kafka brokers configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.Timeout,
	}

	return &kafkaProducer{writer: writer}, nil
}

// Send sends a message to the ingestion topic
func (p *kafkaProducer) Send(ctx context.Context, key []byte, value []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errProducerClosed
	}
	p.mu.Unlock()

	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// Close closes the producer
func (p *kafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

func (u *Uploader) publishRun(ctx context.Context, count int, runAt time.Time) error {
	event := IngestionEvent{Count: count, Timestamp: runAt}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ingestion event: %w", err)
	}

	return u.producer.Send(ctx, []byte(runAt.Format("2006-01-02")), payload)
}
