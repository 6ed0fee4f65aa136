// Command consumer tails the record-created event feed and logs each
// event, for operators verifying the pipeline end to end.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/echomind/config"
	"github.com/spacesedan/echomind/internal/events"
	"github.com/spacesedan/echomind/internal/logging"
	"github.com/spacesedan/echomind/internal/models"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	if cfg.KafkaBroker == "" {
		slog.Error("[Main] KAFKA_BROKER is required")
		os.Exit(1)
	}

	consumer, err := events.NewConsumer(cfg.KafkaBroker, "echomind-event-tail")
	if err != nil {
		slog.Error("[Main] Failed to start consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer consumer.Close()

	consumer.Run(ctx, func(ctx context.Context, record models.AnalysisRecord) error {
		slog.Info("[EventTail] Record created",
			slog.Int64("record_id", record.ID),
			slog.String("modality", string(record.Modality)),
			slog.Float64("sentiment", record.Sentiment.Compound),
			slog.Int("content_length", record.ContentLength))
		return nil
	})
}
