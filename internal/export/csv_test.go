package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/internal/export"
	"github.com/spacesedan/echomind/internal/models"
)

func Test_WriteRecords_then_ParseRecords_roundtrips(t *testing.T) {
	records := []models.AnalysisRecord{
		{
			ID:            1,
			CreatedAt:     time.Date(2025, time.June, 1, 9, 0, 0, 500, time.UTC),
			SourceText:    "rough morning, lots on my mind",
			ResponseText:  "that sounds heavy, want to talk through it?",
			Modality:      models.ModalityNone,
			Sentiment:     models.SentimentScore{Compound: -0.42},
			ContentLength: 73,
		},
		{
			ID:            2,
			CreatedAt:     time.Date(2025, time.June, 2, 18, 30, 0, 0, time.UTC),
			SourceText:    models.VoiceSourcePlaceholder,
			ResponseText:  "Primary emotion detected: calm",
			Modality:      models.ModalityVoice,
			Sentiment:     models.SentimentScore{Compound: 0},
			ContentLength: 42,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteRecords(&buf, records))

	parsed, err := export.ParseRecords(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(records))

	for i := range records {
		assert.Equal(t, records[i].ID, parsed[i].ID)
		assert.True(t, records[i].CreatedAt.Equal(parsed[i].CreatedAt))
		assert.Equal(t, records[i].SourceText, parsed[i].SourceText)
		assert.Equal(t, records[i].ResponseText, parsed[i].ResponseText)
		assert.Equal(t, records[i].Modality, parsed[i].Modality)
		assert.InDelta(t, records[i].Sentiment.Compound, parsed[i].Sentiment.Compound, 1e-12)
		assert.Equal(t, records[i].ContentLength, parsed[i].ContentLength)
	}
}

func Test_WriteRecords_escapes_embedded_commas_and_newlines(t *testing.T) {
	records := []models.AnalysisRecord{{
		ID:           7,
		CreatedAt:    time.Date(2025, time.June, 3, 12, 0, 0, 0, time.UTC),
		SourceText:   "first line\nsecond, with a comma and \"quotes\"",
		ResponseText: "ok",
		Modality:     models.ModalityNone,
	}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteRecords(&buf, records))

	parsed, err := export.ParseRecords(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, records[0].SourceText, parsed[0].SourceText)
}

func Test_WriteRecords_emits_only_header_for_empty_store(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteRecords(&buf, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Equal(t, "id,timestamp,source_text,response_text,modality,sentiment_compound,content_length", lines[0])
}

func Test_ParseRecords_rejects_unknown_header(t *testing.T) {
	input := "foo,bar,baz,qux,quux,corge,grault\n"

	_, err := export.ParseRecords(strings.NewReader(input))

	assert.Error(t, err)
}
