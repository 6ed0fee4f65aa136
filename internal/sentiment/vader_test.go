package sentiment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/echomind/internal/models"
	"github.com/spacesedan/echomind/internal/sentiment"
)

func Test_Score_labels_negative_text_as_negative(t *testing.T) {
	scorer := sentiment.NewScorer()

	score := scorer.Score("I feel hopeless and everything is terrible")

	assert.Equal(t, models.SentimentNegative, score.Label())
	assert.Less(t, score.Compound, models.NegativeThreshold)
}

func Test_Score_labels_positive_text_as_positive(t *testing.T) {
	scorer := sentiment.NewScorer()

	score := scorer.Score("Today was wonderful, I feel great and happy!")

	assert.Equal(t, models.SentimentPositive, score.Label())
	assert.Greater(t, score.Compound, models.PositiveThreshold)
}

func Test_Score_returns_neutral_for_empty_input(t *testing.T) {
	scorer := sentiment.NewScorer()

	assert.Equal(t, models.NeutralSentiment(), scorer.Score(""))
	assert.Equal(t, models.NeutralSentiment(), scorer.Score("   \n\t  "))
}

func Test_Score_components_sum_to_one(t *testing.T) {
	scorer := sentiment.NewScorer()

	score := scorer.Score("Some days are good, some days are bad.")

	assert.InDelta(t, 1.0, score.Positive+score.Neutral+score.Negative, 0.01)
}

func Test_Score_ignores_markdown_links(t *testing.T) {
	scorer := sentiment.NewScorer()

	plain := scorer.Score("I love this")
	linked := scorer.Score("I love [this](https://example.com/some-awful-terrible-url)")

	assert.Equal(t, plain.Label(), linked.Label())
}
