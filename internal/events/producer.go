// Package events publishes record lifecycle notifications for downstream
// consumers. Publishing is best-effort: the record store is the source of
// truth and a missed event is never surfaced to the user.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/echomind/internal/models"
)

const TopicRecordCreated = "analysis-record-created"

type Producer struct {
	producer *kafka.Producer
}

func NewProducer(broker string) (*Producer, error) {
	slog.Info("[Events] Initializing Kafka producer", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[Events] failed to create producer: %w", err)
	}

	slog.Info("[Events] Kafka producer initialized")
	return &Producer{producer: p}, nil
}

func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	if remaining := p.producer.Flush(5000); remaining > 0 {
		slog.Warn("[Events] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
}

// RecordCreated publishes one created record. Nil receivers are no-ops
// so the producer can stay unconfigured in small deployments.
func (p *Producer) RecordCreated(record models.AnalysisRecord) {
	if p == nil || p.producer == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		slog.Warn("[Events] Failed to serialize record event",
			slog.Int64("record_id", record.ID),
			slog.String("error", err.Error()))
		return
	}

	topic := TopicRecordCreated
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(fmt.Sprintf("%d", record.ID)),
		Value:          payload,
	}

	var produceErr error
	for i := 0; i < 3; i++ {
		produceErr = p.producer.Produce(msg, nil)
		if produceErr == nil {
			return
		}
		slog.Warn("[Events] Failed to produce record event, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", produceErr.Error()))
		time.Sleep(500 * time.Millisecond)
	}
	slog.Error("[Events] Dropping record event after retries",
		slog.Int64("record_id", record.ID),
		slog.String("error", produceErr.Error()))
}
