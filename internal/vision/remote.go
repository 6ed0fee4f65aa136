package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/spacesedan/echomind/internal/clients"
)

// RemoteDetector is the neural strategy: an external detection service
// behind the model-serving client. Preferred over the cascade when its
// endpoint answers at startup.
type RemoteDetector struct {
	client   *clients.ModelServerClient
	endpoint string
}

type detectRequest struct {
	ImageB64 string `json:"image_b64"`
}

type detectResponse struct {
	Faces []struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"faces"`
}

func NewRemoteDetector(endpoint string) (Detector, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("no detector endpoint configured")
	}

	client := clients.GetModelServerClient()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("detector endpoint unreachable: %w", err)
	}

	return &RemoteDetector{client: client, endpoint: endpoint}, nil
}

func (d *RemoteDetector) Name() string { return "neural" }

func (d *RemoteDetector) DetectFaces(ctx context.Context, img image.Image) ([]FaceRegion, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode frame for detection: %w", err)
	}

	req := detectRequest{ImageB64: base64.StdEncoding.EncodeToString(buf.Bytes())}

	var resp detectResponse
	if err := d.client.PostJSON(ctx, d.endpoint, req, &resp); err != nil {
		return nil, err
	}

	regions := make([]FaceRegion, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		regions = append(regions, FaceRegion{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height})
	}
	return regions, nil
}
