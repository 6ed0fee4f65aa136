// Package engine wires the analysis pipeline together: media preparation,
// detection, classification, sentiment scoring and record persistence.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/spacesedan/echomind/internal/agent"
	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/inference"
	"github.com/spacesedan/echomind/internal/media"
	"github.com/spacesedan/echomind/internal/models"
	"github.com/spacesedan/echomind/internal/records"
	"github.com/spacesedan/echomind/internal/vision"
)

type Engine struct {
	registry *inference.Registry
	sampler  *media.VideoSampler
	builder  *records.Builder
	agent    *agent.Agent
}

func New(registry *inference.Registry, sampler *media.VideoSampler,
	builder *records.Builder, chatAgent *agent.Agent,
) *Engine {
	return &Engine{
		registry: registry,
		sampler:  sampler,
		builder:  builder,
		agent:    chatAgent,
	}
}

// ChatResult is the primary result of a text interaction. Persisted is
// false when the best-effort record append failed; the reply is still
// returned.
type ChatResult struct {
	RecordID  int64                 `json:"record_id,omitempty"`
	Response  string                `json:"response"`
	Sentiment models.SentimentScore `json:"sentiment"`
	Label     models.SentimentLabel `json:"sentiment_label"`
	Persisted bool                  `json:"persisted"`
}

// Chat runs one text interaction: agent reply, sentiment scoring of the
// user's message, then best-effort persistence.
func (e *Engine) Chat(ctx context.Context, message string) (ChatResult, error) {
	if message == "" {
		return ChatResult{}, errs.Validation("empty message")
	}

	response, err := e.agent.Reply(ctx, message)
	if err != nil {
		return ChatResult{}, fmt.Errorf("agent reply failed: %w", err)
	}

	score := e.registry.Scorer.Score(message)
	record := e.builder.Build(message, response, models.ModalityNone, score, nil)
	persisted := e.builder.Save(ctx, &record)

	return ChatResult{
		RecordID:  record.ID,
		Response:  response,
		Sentiment: score,
		Label:     score.Label(),
		Persisted: persisted,
	}, nil
}

// AnalyzeMedia runs the full inference pipeline for an uploaded payload:
// ingress validation, sample preparation (face locate / frame sample /
// waveform check), classification and best-effort persistence.
func (e *Engine) AnalyzeMedia(ctx context.Context, upload models.MediaUpload) (models.MediaAnalysis, error) {
	if err := media.ValidateUpload(upload); err != nil {
		return models.MediaAnalysis{}, err
	}

	switch upload.Kind {
	case models.MediaImage:
		return e.analyzeFace(ctx, upload.Data)
	case models.MediaVideo:
		frame, err := e.sampler.SampleMiddleFrame(ctx, upload.Data)
		if err != nil {
			return models.MediaAnalysis{}, err
		}
		return e.analyzeFace(ctx, frame)
	case models.MediaAudio:
		return e.analyzeVoice(ctx, upload.Data)
	default:
		return models.MediaAnalysis{}, errs.Validation("unsupported media kind %q", upload.Kind)
	}
}

// analyzeFace locates the dominant face, crops it with padding and
// classifies the crop. "No face" is a terminal result, not an error, and
// produces no record.
func (e *Engine) analyzeFace(ctx context.Context, imageBytes []byte) (models.MediaAnalysis, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return models.MediaAnalysis{}, errs.ValidationWrap(err, "failed to decode image")
	}

	region, found, err := e.registry.Locator.Locate(ctx, img)
	if err != nil {
		return e.degraded(models.ModalityFace, errs.Inference("face_detection", err)), nil
	}
	if !found {
		return models.MediaAnalysis{Modality: models.ModalityFace, FaceFound: false}, nil
	}

	crop := vision.Crop(img, region)
	var cropBuf bytes.Buffer
	if err := encodeJPEG(&cropBuf, crop); err != nil {
		return models.MediaAnalysis{}, fmt.Errorf("failed to encode face crop: %w", err)
	}

	if e.registry.FaceClassifier == nil {
		return e.degraded(models.ModalityFace,
			errs.Inference("face", fmt.Errorf("face classifier not configured"))), nil
	}

	distribution, err := e.registry.FaceClassifier.Classify(ctx, cropBuf.Bytes())
	if err != nil {
		return e.degraded(models.ModalityFace, err), nil
	}

	return e.finish(ctx, models.ModalityFace, models.FaceSourcePlaceholder, distribution), nil
}

// analyzeVoice validates the waveform before any model invocation, then
// classifies the full clip.
func (e *Engine) analyzeVoice(ctx context.Context, audioBytes []byte) (models.MediaAnalysis, error) {
	if _, err := media.ValidateWAV(audioBytes); err != nil {
		return models.MediaAnalysis{}, err
	}

	if e.registry.VoiceClassifier == nil {
		return e.degraded(models.ModalityVoice,
			errs.Inference("voice", fmt.Errorf("voice classifier not configured"))), nil
	}

	distribution, err := e.registry.VoiceClassifier.Classify(ctx, audioBytes)
	if err != nil {
		return e.degraded(models.ModalityVoice, err), nil
	}

	return e.finish(ctx, models.ModalityVoice, models.VoiceSourcePlaceholder, distribution), nil
}

// finish assembles and best-effort persists the record for a successful
// classification.
func (e *Engine) finish(ctx context.Context, modality models.Modality,
	placeholder string, distribution models.EmotionDistribution,
) models.MediaAnalysis {
	response := fmt.Sprintf("Primary emotion detected: %s", distribution.Primary())
	score := e.registry.Scorer.Score(placeholder)

	record := e.builder.Build(placeholder, response, modality, score, distribution)
	persisted := e.builder.Save(ctx, &record)

	return models.MediaAnalysis{
		RecordID:  record.ID,
		Modality:  modality,
		Emotions:  distribution,
		Primary:   distribution.Primary(),
		FaceFound: true,
		Persisted: persisted,
	}
}

// degraded is the inference-failure path: the request continues with an
// unknown primary emotion instead of aborting. No record is persisted,
// since there is no analysis content to keep.
func (e *Engine) degraded(modality models.Modality, err error) models.MediaAnalysis {
	slog.Warn("[Engine] Inference degraded",
		slog.String("modality", string(modality)),
		slog.String("error", err.Error()))
	return models.MediaAnalysis{
		Modality:  modality,
		Primary:   models.PrimaryEmotionUnknown,
		FaceFound: modality == models.ModalityFace,
	}
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, nil)
}
