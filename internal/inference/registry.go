package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/spacesedan/echomind/config"
	"github.com/spacesedan/echomind/internal/sentiment"
	"github.com/spacesedan/echomind/internal/vision"
)

// Registry is the process-wide capability set, built exactly once in main
// and injected everywhere. No lazy globals: components that used to load
// on first use are resolved here, so concurrent first requests never race
// on model loads.
type Registry struct {
	Locator         *vision.Locator
	FaceClassifier  Classifier
	VoiceClassifier Classifier
	Scorer          *sentiment.Scorer
}

// NewRegistry resolves every capability. Detection strategies are tried
// in ranked order (neural first, cascade fallback); the winner serves for
// the process lifetime. A missing classifier endpoint leaves that
// capability nil and the corresponding modality degrades at request time.
func NewRegistry(ctx context.Context, cfg config.Config) (*Registry, error) {
	detector, err := vision.ResolveDetector(
		func() (vision.Detector, error) { return vision.NewRemoteDetector(cfg.DetectorEndpoint) },
		func() (vision.Detector, error) { return vision.NewCascadeDetector(cfg.CascadeFile) },
	)
	if err != nil {
		return nil, fmt.Errorf("no face detection strategy available: %w", err)
	}

	reg := &Registry{
		Locator: vision.NewLocator(detector, cfg.Policy.FacePaddingRatio),
		Scorer:  sentiment.NewScorer(),
	}

	if face, err := NewRemoteClassifier(ctx, cfg.FaceClassifierEndpoint, "face"); err != nil {
		slog.Warn("[Registry] Face classifier unavailable", slog.String("error", err.Error()))
	} else {
		reg.FaceClassifier = face
	}

	if voice, err := NewRemoteClassifier(ctx, cfg.VoiceClassifierEndpoint, "voice"); err != nil {
		slog.Warn("[Registry] Voice classifier unavailable", slog.String("error", err.Error()))
	} else {
		reg.VoiceClassifier = voice
	}

	return reg, nil
}

func encodeSample(sample []byte) string {
	return base64.StdEncoding.EncodeToString(sample)
}
