package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nao1215/randcrawl/internal/model"
)

// kafkaBatchTimeout flushes single-message writes promptly. The kafka-go
// default of one second would block a worker on every record.
const kafkaBatchTimeout = 10 * time.Millisecond

// Kafka message header values for the "type" header.
const (
	messageTypeFinding = "finding"
	messageTypeError   = "error"
)

// messageWriter abstracts kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes findings and errors to a Kafka topic.
// Findings are keyed by hostname so one host's records land on one partition.
type KafkaSink struct {
	writer messageWriter
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink creates a sink publishing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           kafkaBatchTimeout,
			AllowAutoTopicCreation: false,
		},
	}
}

// NewKafkaSinkWithWriter builds a sink using a custom writer (tests).
func NewKafkaSinkWithWriter(writer messageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// RecordFinding implements Sink.
func (k *KafkaSink) RecordFinding(ctx context.Context, finding *model.Finding) error {
	return k.publish(ctx, messageTypeFinding, finding.Hostname, finding)
}

// RecordError implements Sink.
func (k *KafkaSink) RecordError(ctx context.Context, record *model.ErrorRecord) error {
	return k.publish(ctx, messageTypeError, record.URL, record)
}

func (k *KafkaSink) publish(ctx context.Context, kind, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "type", Value: []byte(kind)}},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", kind, err)
	}
	return nil
}

// Close shuts down the underlying writer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
