package records_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/internal/db"
	"github.com/spacesedan/echomind/internal/models"
	"github.com/spacesedan/echomind/internal/records"
)

func openTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.OpenStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func Test_Build_counts_characters_not_bytes(t *testing.T) {
	builder := records.NewBuilder(openTestStore(t), nil, nil)

	record := builder.Build("héllo", "wörld!", models.ModalityNone,
		models.NeutralSentiment(), nil)

	assert.Equal(t, 11, record.ContentLength)
	assert.False(t, record.CreatedAt.IsZero())
}

func Test_Build_counts_placeholder_source_for_media_records(t *testing.T) {
	builder := records.NewBuilder(openTestStore(t), nil, nil)

	record := builder.Build(models.VoiceSourcePlaceholder, "Primary emotion detected: calm",
		models.ModalityVoice, models.NeutralSentiment(), nil)

	assert.Equal(t, len(models.VoiceSourcePlaceholder)+30, record.ContentLength)
	assert.Equal(t, models.ModalityVoice, record.Modality)
}

func Test_Build_defaults_modality_to_none(t *testing.T) {
	builder := records.NewBuilder(openTestStore(t), nil, nil)

	record := builder.Build("hi", "hello", "", models.NeutralSentiment(), nil)

	assert.Equal(t, models.ModalityNone, record.Modality)
}

func Test_Save_persists_and_reports_success(t *testing.T) {
	store := openTestStore(t)
	builder := records.NewBuilder(store, nil, nil)
	record := builder.Build("hi", "hello", models.ModalityNone, models.NeutralSentiment(), nil)

	persisted := builder.Save(context.Background(), &record)

	assert.True(t, persisted)
	assert.Greater(t, record.ID, int64(0))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_Save_reports_failure_without_erroring(t *testing.T) {
	store := openTestStore(t)
	builder := records.NewBuilder(store, nil, nil)
	record := builder.Build("hi", "hello", models.ModalityNone, models.NeutralSentiment(), nil)

	store.Close()
	persisted := builder.Save(context.Background(), &record)

	assert.False(t, persisted)
}
