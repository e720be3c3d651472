package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaEmitter writes audit events as JSON to a Kafka topic.
type KafkaEmitter struct {
	writer *kafka.Writer
}

// NewKafkaEmitter returns an emitter that writes to topic on the given
// brokers. Call Close when shutting down.
func NewKafkaEmitter(brokers []string, topic string) *KafkaEmitter {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaEmitter{writer: writer}
}

// Emit serializes the event and writes it under a short timeout so a slow
// broker never blocks the request path. Errors are logged and dropped.
func (e *KafkaEmitter) Emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("audit: marshal event %s: %v", event.Action, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
	}); err != nil {
		log.Printf("audit: write event %s: %v", event.Action, err)
	}
}

// Close flushes and closes the underlying writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}

// LogEmitter writes audit events to the process log. Used when no Kafka
// brokers are configured.
type LogEmitter struct{}

func (LogEmitter) Emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("audit: marshal event %s: %v", event.Action, err)
		return
	}
	log.Printf("audit: %s", payload)
}
