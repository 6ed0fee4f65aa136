package models

import "time"

// Modality is the channel an analysis record derives from.
type Modality string

const (
	ModalityVoice Modality = "voice"
	ModalityFace  Modality = "face"
	ModalityNone  Modality = "none"
)

// Placeholder source texts stored for non-text modalities. Content length
// counts these, so the metric measures total recorded content rather than
// literal typing.
const (
	VoiceSourcePlaceholder = "[voice note]"
	FaceSourcePlaceholder  = "[face capture]"
)

// AnalysisRecord is the persisted, append-only unit of analysis. Created
// exactly once per interaction, never updated in place, deletable by
// explicit user action.
type AnalysisRecord struct {
	ID            int64               `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	SourceText    string              `json:"source_text"`
	ResponseText  string              `json:"response_text"`
	Modality      Modality            `json:"modality_tag"`
	Sentiment     SentimentScore      `json:"sentiment"`
	ContentLength int                 `json:"content_length"`
	Emotions      EmotionDistribution `json:"emotion_distribution,omitempty"`
}

// HasEmotions reports whether the record carries a stored emotion
// distribution (voice and face modalities only).
func (r AnalysisRecord) HasEmotions() bool {
	return len(r.Emotions) > 0
}
