package models

// MediaKind is the caller-declared kind of an uploaded media payload.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// MediaUpload is a raw media payload as it arrives at ingress, before any
// validation or decode.
type MediaUpload struct {
	Kind     MediaKind
	Filename string
	Data     []byte
}

// MediaAnalysis is the user-facing result of a voice or face analysis
// request. Persisted is false when the best-effort record append failed;
// the analysis itself is still valid.
type MediaAnalysis struct {
	RecordID  int64               `json:"record_id,omitempty"`
	Modality  Modality            `json:"modality"`
	Emotions  EmotionDistribution `json:"emotions"`
	Primary   string              `json:"primary_emotion"`
	FaceFound bool                `json:"face_found"`
	Persisted bool                `json:"persisted"`
}
