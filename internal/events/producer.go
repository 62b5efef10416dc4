package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher is the narrow surface services depend on.
type Publisher interface {
	Publish(ctx context.Context, eventType, correlationID string, payload any)
}

// KafkaPublisher writes enveloped events to a single topic, keyed by
// correlation id so all events of one order land on one partition.
type KafkaPublisher struct {
	writer   *kafka.Writer
	producer string
	logger   *log.Logger
}

func NewKafkaPublisher(brokers []string, topic, producer string, logger *log.Logger) *KafkaPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		producer: producer,
		logger:   logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, correlationID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Printf("events: marshal payload type=%s error=%v", eventType, err)
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Printf("events: marshal envelope type=%s error=%v", eventType, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Printf("events: publish type=%s correlation=%s error=%v", eventType, correlationID, err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events; used when no brokers are configured and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) {}
