package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/internal/models"
)

func Test_NewEmotionDistribution_sorts_descending_by_score(t *testing.T) {
	dist, err := models.NewEmotionDistribution([]models.EmotionPrediction{
		{Label: "neutral", Score: 0.2},
		{Label: "happy", Score: 0.7},
		{Label: "sad", Score: 0.1},
	})

	require.NoError(t, err)
	assert.Equal(t, "happy", dist.Primary())
	assert.Equal(t, []models.EmotionPrediction{
		{Label: "happy", Score: 0.7},
		{Label: "neutral", Score: 0.2},
		{Label: "sad", Score: 0.1},
	}, []models.EmotionPrediction(dist))
}

func Test_NewEmotionDistribution_rejects_out_of_range_scores(t *testing.T) {
	_, err := models.NewEmotionDistribution([]models.EmotionPrediction{
		{Label: "happy", Score: 1.3},
	})
	assert.Error(t, err)

	_, err = models.NewEmotionDistribution([]models.EmotionPrediction{
		{Label: "sad", Score: -0.1},
	})
	assert.Error(t, err)
}

func Test_NewEmotionDistribution_rejects_empty_labels(t *testing.T) {
	_, err := models.NewEmotionDistribution([]models.EmotionPrediction{
		{Label: "", Score: 0.5},
	})
	assert.Error(t, err)
}

func Test_Primary_of_empty_distribution_is_unknown(t *testing.T) {
	var dist models.EmotionDistribution
	assert.Equal(t, models.PrimaryEmotionUnknown, dist.Primary())
}

func Test_SentimentLabel_boundaries(t *testing.T) {
	cases := []struct {
		compound float64
		want     models.SentimentLabel
	}{
		{0.8, models.SentimentPositive},
		{0.05, models.SentimentPositive},
		{0.049, models.SentimentNeutral},
		{0, models.SentimentNeutral},
		{-0.049, models.SentimentNeutral},
		{-0.05, models.SentimentNegative},
		{-0.9, models.SentimentNegative},
	}

	for _, tc := range cases {
		score := models.SentimentScore{Compound: tc.compound}
		assert.Equalf(t, tc.want, score.Label(), "compound %v", tc.compound)
	}
}

func Test_NeutralSentiment_is_labeled_neutral(t *testing.T) {
	assert.Equal(t, models.SentimentNeutral, models.NeutralSentiment().Label())
}
