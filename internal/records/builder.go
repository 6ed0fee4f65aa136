// Package records assembles normalized analysis records and handles
// their best-effort persistence fan-out.
package records

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/echomind/internal/db"
	"github.com/spacesedan/echomind/internal/events"
	"github.com/spacesedan/echomind/internal/models"
)

// Builder fuses classifier output, sentiment scores and derived metadata
// into persistable records. The archiver and event producer are optional
// secondary sinks; both tolerate being nil.
type Builder struct {
	store    *db.Store
	archiver *db.Archiver
	events   *events.Producer
}

func NewBuilder(store *db.Store, archiver *db.Archiver, producer *events.Producer) *Builder {
	return &Builder{store: store, archiver: archiver, events: producer}
}

// Build produces a record ready for persistence. Content length is the
// character count of source plus response; for voice and face captures
// the source is a fixed placeholder, so the metric measures total
// recorded content rather than literal typing.
func (b *Builder) Build(source, response string, modality models.Modality,
	sentiment models.SentimentScore, emotions models.EmotionDistribution,
) models.AnalysisRecord {
	if modality == "" {
		modality = models.ModalityNone
	}
	return models.AnalysisRecord{
		CreatedAt:     time.Now().UTC(),
		SourceText:    source,
		ResponseText:  response,
		Modality:      modality,
		Sentiment:     sentiment,
		ContentLength: utf8.RuneCountInString(source) + utf8.RuneCountInString(response),
		Emotions:      emotions,
	}
}

// Save appends exactly one record and reports whether the append landed.
// An append failure is logged and swallowed so the triggering operation
// can still return its primary result; the returned flag makes the
// degradation observable to callers and tests instead of truly silent.
func (b *Builder) Save(ctx context.Context, record *models.AnalysisRecord) bool {
	if err := b.store.Append(ctx, record); err != nil {
		slog.Error("[Records] Best-effort record append failed",
			slog.String("modality", string(record.Modality)),
			slog.String("error", err.Error()))
		return false
	}

	if b.events != nil {
		b.events.RecordCreated(*record)
	}
	if b.archiver != nil {
		b.archiver.Add(ctx, *record)
	}
	return true
}
