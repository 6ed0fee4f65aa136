package models

import (
	"fmt"
	"sort"
)

// EmotionPrediction is a single labeled score produced by an emotion model.
type EmotionPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionDistribution is a ranked list of predictions over the model's
// label set, sorted descending by score. The first entry is the primary
// emotion.
type EmotionDistribution []EmotionPrediction

// PrimaryEmotionUnknown is substituted when a classifier fails and the
// request continues with degraded analysis.
const PrimaryEmotionUnknown = "unknown"

// Primary returns the highest-scoring label, or "unknown" for an empty
// distribution.
func (d EmotionDistribution) Primary() string {
	if len(d) == 0 {
		return PrimaryEmotionUnknown
	}
	return d[0].Label
}

// NewEmotionDistribution validates raw model output at the ingest boundary
// and returns it sorted descending by score, independent of the model's
// native ordering.
func NewEmotionDistribution(preds []EmotionPrediction) (EmotionDistribution, error) {
	for _, p := range preds {
		if p.Label == "" {
			return nil, fmt.Errorf("emotion prediction with empty label")
		}
		if p.Score < 0 || p.Score > 1 {
			return nil, fmt.Errorf("emotion score out of range for %q: %f", p.Label, p.Score)
		}
	}
	out := make(EmotionDistribution, len(preds))
	copy(out, preds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
