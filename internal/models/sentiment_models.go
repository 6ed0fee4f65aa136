package models

// SentimentScore holds the VADER polarity scores for a piece of text.
// Positive, Neutral and Negative sum to ~1; Compound is in [-1, 1].
type SentimentScore struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// Classification thresholds on the compound score. Boundary values map
// away from Neutral: 0.05 is Positive, -0.05 is Negative.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// NeutralSentiment is the canonical score for empty input and for
// analyzer failures (fail-open).
func NeutralSentiment() SentimentScore {
	return SentimentScore{Compound: 0, Positive: 0, Neutral: 1, Negative: 0}
}

// Label maps the compound score to its categorical label.
func (s SentimentScore) Label() SentimentLabel {
	switch {
	case s.Compound >= PositiveThreshold:
		return SentimentPositive
	case s.Compound <= NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
