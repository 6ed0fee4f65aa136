package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/internal/db"
	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/models"
)

func openTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.OpenStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedRecord(t *testing.T, store *db.Store, createdAt time.Time, compound float64,
	modality models.Modality, length int,
) models.AnalysisRecord {
	t.Helper()
	record := models.AnalysisRecord{
		CreatedAt:     createdAt,
		SourceText:    "how was your day",
		ResponseText:  "thanks for checking in",
		Modality:      modality,
		Sentiment:     models.SentimentScore{Compound: compound, Neutral: 1},
		ContentLength: length,
	}
	require.NoError(t, store.Append(context.Background(), &record))
	return record
}

func Test_Append_assigns_id_and_roundtrips(t *testing.T) {
	store := openTestStore(t)
	createdAt := time.Date(2025, time.June, 1, 10, 30, 0, 123456789, time.UTC)

	record := models.AnalysisRecord{
		CreatedAt:    createdAt,
		SourceText:   "hello",
		ResponseText: "hi there",
		Modality:     models.ModalityFace,
		Sentiment:    models.SentimentScore{Compound: 0.4, Positive: 0.5, Neutral: 0.5},
		Emotions: models.EmotionDistribution{
			{Label: "happy", Score: 0.8},
			{Label: "neutral", Score: 0.2},
		},
		ContentLength: 13,
	}
	require.NoError(t, store.Append(context.Background(), &record))
	assert.Greater(t, record.ID, int64(0))

	got, err := store.Query(context.Background(), db.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, record.ID, got[0].ID)
	assert.True(t, createdAt.Equal(got[0].CreatedAt))
	assert.Equal(t, models.ModalityFace, got[0].Modality)
	assert.Equal(t, "happy", got[0].Emotions.Primary())
	assert.InDelta(t, 0.4, got[0].Sentiment.Compound, 1e-9)
}

func Test_Query_defaults_to_newest_first(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, store, base, 0, models.ModalityNone, 10)
	seedRecord(t, store, base.Add(time.Hour), 0, models.ModalityNone, 10)
	seedRecord(t, store, base.Add(2*time.Hour), 0, models.ModalityNone, 10)

	got, err := store.Query(context.Background(), db.RecordFilter{})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
	assert.True(t, got[1].CreatedAt.After(got[2].CreatedAt))
}

func Test_Query_sorts_by_sentiment_ascending(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, store, base, 0.6, models.ModalityNone, 10)
	seedRecord(t, store, base.Add(time.Hour), -0.4, models.ModalityNone, 10)
	seedRecord(t, store, base.Add(2*time.Hour), 0.1, models.ModalityNone, 10)

	got, err := store.Query(context.Background(), db.RecordFilter{
		SortBy:    db.SortBySentiment,
		Ascending: true,
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, -0.4, got[0].Sentiment.Compound, 1e-9)
	assert.InDelta(t, 0.1, got[1].Sentiment.Compound, 1e-9)
	assert.InDelta(t, 0.6, got[2].Sentiment.Compound, 1e-9)
}

func Test_Query_filters_by_modality_and_sentiment_range(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	seedRecord(t, store, base, -0.7, models.ModalityVoice, 10)
	seedRecord(t, store, base.Add(time.Hour), -0.2, models.ModalityVoice, 10)
	seedRecord(t, store, base.Add(2*time.Hour), -0.8, models.ModalityNone, 10)

	voice := models.ModalityVoice
	minSentiment := -1.0
	maxSentiment := -0.5
	got, err := store.Query(context.Background(), db.RecordFilter{
		Modality:     &voice,
		MinSentiment: &minSentiment,
		MaxSentiment: &maxSentiment,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ModalityVoice, got[0].Modality)
	assert.InDelta(t, -0.7, got[0].Sentiment.Compound, 1e-9)
}

func Test_Query_time_window_and_pagination(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedRecord(t, store, base.Add(time.Duration(i)*time.Hour), 0, models.ModalityNone, 10)
	}

	since := base.Add(time.Hour)
	page, err := store.Query(context.Background(), db.RecordFilter{
		Since:     &since,
		SortBy:    db.SortByTimestamp,
		Ascending: true,
		Limit:     2,
		Offset:    2,
	})

	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.Equal(base.Add(3*time.Hour)))
	assert.True(t, page[1].CreatedAt.Equal(base.Add(4*time.Hour)))
}

func Test_Delete_removes_record_and_reports_missing_ids(t *testing.T) {
	store := openTestStore(t)
	record := seedRecord(t, store, time.Now().UTC(), 0, models.ModalityNone, 10)

	require.NoError(t, store.Delete(context.Background(), record.ID))

	err := store.Delete(context.Background(), record.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func Test_Count_tracks_appends(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().UTC()
	seedRecord(t, store, base, 0, models.ModalityNone, 10)
	seedRecord(t, store, base.Add(time.Second), 0, models.ModalityVoice, 10)

	count, err := store.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
