package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/echomind/config"
	"github.com/spacesedan/echomind/internal/agent"
	"github.com/spacesedan/echomind/internal/api"
	"github.com/spacesedan/echomind/internal/clients"
	"github.com/spacesedan/echomind/internal/db"
	"github.com/spacesedan/echomind/internal/engine"
	"github.com/spacesedan/echomind/internal/events"
	"github.com/spacesedan/echomind/internal/inference"
	"github.com/spacesedan/echomind/internal/logging"
	"github.com/spacesedan/echomind/internal/media"
	"github.com/spacesedan/echomind/internal/monitoring"
	"github.com/spacesedan/echomind/internal/records"
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

	store, err := db.OpenStore(cfg.DBPath)
	if err != nil {
		slog.Error("[Main] Failed to open record store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	var cache *clients.ValkeyClient
	if cfg.ValkeyAddress != "" {
		cache, err = clients.InitValkey()
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, analytics cache disabled",
				slog.String("error", err.Error()))
			cache = nil
		} else {
			defer clients.CloseValkey()
		}
	}

	var producer *events.Producer
	if cfg.KafkaBroker != "" {
		producer, err = events.NewProducer(cfg.KafkaBroker)
		if err != nil {
			slog.Warn("[Main] Kafka unavailable, record events disabled",
				slog.String("error", err.Error()))
			producer = nil
		} else {
			defer producer.Close()
		}
	}

	var archiver *db.Archiver
	if cfg.ArchiveTable != "" {
		archiver = db.NewArchiver(cfg.ArchiveTable)
		defer archiver.Flush(context.Background())
	}

	registry, err := inference.NewRegistry(ctx, cfg)
	if err != nil {
		slog.Error("[Main] Failed to initialize inference registry",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	var fallback agent.Summarizer
	if local, err := agent.NewLocalSummarizer(); err != nil {
		slog.Warn("[Main] Local summarizer unavailable",
			slog.String("error", err.Error()))
	} else {
		defer local.Close()
		fallback = local
	}
	chatAgent := agent.New(cfg.OpenAIKey, cfg.SummaryModel, fallback)

	builder := records.NewBuilder(store, archiver, producer)
	eng := engine.New(registry, media.NewVideoSampler(), builder, chatAgent)

	detectorHealthy := &atomic.Bool{}
	faceHealthy := &atomic.Bool{}
	voiceHealthy := &atomic.Bool{}
	detectorHealthy.Store(true)
	faceHealthy.Store(true)
	voiceHealthy.Store(true)

	go monitoring.MonitorEndpointHealth(ctx, "detector", cfg.DetectorEndpoint, detectorHealthy)
	go monitoring.MonitorEndpointHealth(ctx, "face_classifier", cfg.FaceClassifierEndpoint, faceHealthy)
	go monitoring.MonitorEndpointHealth(ctx, "voice_classifier", cfg.VoiceClassifierEndpoint, voiceHealthy)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewServer(store, eng, chatAgent, cache, cfg.Policy).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		slog.Info("[Main] HTTP server listening", slog.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] HTTP server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Graceful shutdown failed", slog.String("error", err.Error()))
	}
}
