package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/echomind/internal/models"
)

// RecordHandler processes one decoded record event. Returning an error
// logs and skips; the consumer never stops on a bad message.
type RecordHandler func(ctx context.Context, record models.AnalysisRecord) error

type Consumer struct {
	consumer *kafka.Consumer
}

func NewConsumer(broker, groupID string) (*Consumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  broker,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("[Events] failed to create consumer: %w", err)
	}

	if err := c.Subscribe(TopicRecordCreated, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("[Events] failed to subscribe to %s: %w", TopicRecordCreated, err)
	}

	slog.Info("[Events] Kafka consumer subscribed",
		slog.String("broker", broker),
		slog.String("topic", TopicRecordCreated))
	return &Consumer{consumer: c}, nil
}

func (c *Consumer) Close() {
	if c == nil || c.consumer == nil {
		return
	}
	c.consumer.Close()
}

// Run polls record-created events until the context ends, handing each
// decoded record to the handler.
func (c *Consumer) Run(ctx context.Context, handle RecordHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := c.consumer.ReadMessage(500 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			slog.Error("[Events] Failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		var record models.AnalysisRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			slog.Warn("[Events] Failed to deserialize record event, skipping...",
				slog.String("error", err.Error()))
			continue
		}

		if err := handle(ctx, record); err != nil {
			slog.Warn("[Events] Handler failed for record event",
				slog.Int64("record_id", record.ID),
				slog.String("error", err.Error()))
		}
	}
}
