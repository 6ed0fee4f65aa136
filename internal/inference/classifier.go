// Package inference holds the emotion classifier contract and the
// capability registry the rest of the engine is wired through.
package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/spacesedan/echomind/internal/clients"
	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/models"
)

// Classifier maps a prepared media sample to a ranked emotion
// distribution. The face classifier receives the cropped, padded face
// region; the voice classifier receives a validated WAV clip.
type Classifier interface {
	Classify(ctx context.Context, sample []byte) (models.EmotionDistribution, error)
}

// RemoteClassifier invokes an external model-serving endpoint. The model
// behind the endpoint is a black box; its raw output is validated and
// re-sorted at this boundary so downstream code never sees untyped maps
// or model-native ordering.
type RemoteClassifier struct {
	client   *clients.ModelServerClient
	endpoint string
	op       string
}

type classifyRequest struct {
	SampleB64 string `json:"sample_b64"`
}

type classifyResponse struct {
	Predictions []models.EmotionPrediction `json:"predictions"`
}

// NewRemoteClassifier pings the endpoint once; an unreachable model is a
// startup failure, not something retried per request.
func NewRemoteClassifier(ctx context.Context, endpoint, op string) (*RemoteClassifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("no %s classifier endpoint configured", op)
	}

	client := clients.GetModelServerClient()
	if err := client.Ping(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("%s classifier endpoint unreachable: %w", op, err)
	}

	return &RemoteClassifier{client: client, endpoint: endpoint, op: op}, nil
}

func (c *RemoteClassifier) Classify(ctx context.Context, sample []byte) (models.EmotionDistribution, error) {
	req := classifyRequest{SampleB64: encodeSample(sample)}

	var resp classifyResponse
	if err := c.client.PostJSON(ctx, c.endpoint, req, &resp); err != nil {
		return nil, &errs.InferenceError{
			Op:      c.op,
			Timeout: errors.Is(err, context.DeadlineExceeded),
			Err:     err,
		}
	}

	dist, err := models.NewEmotionDistribution(resp.Predictions)
	if err != nil {
		return nil, errs.Inference(c.op, err)
	}
	return dist, nil
}
