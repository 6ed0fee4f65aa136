package vision

import (
	"context"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// CascadeDetector is the classical fallback strategy: a pure-Go pixel
// intensity cascade that needs no external service. Lower detection rate
// than the neural strategy, same contract.
type CascadeDetector struct {
	classifier *pigo.Pigo
}

const minDetectionQuality = 5.0

func NewCascadeDetector(cascadePath string) (Detector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file %q: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &CascadeDetector{classifier: classifier}, nil
}

func (d *CascadeDetector) Name() string { return "cascade" }

func (d *CascadeDetector) DetectFaces(ctx context.Context, img image.Image) ([]FaceRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	pixels := pigo.RgbToGrayscale(img)

	maxSize := rows
	if cols < maxSize {
		maxSize = cols
	}

	params := pigo.CascadeParams{
		MinSize:     30,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	detections := d.classifier.RunCascade(params, 0.0)
	detections = d.classifier.ClusterDetections(detections, 0.2)

	var regions []FaceRegion
	for _, det := range detections {
		if det.Q < minDetectionQuality {
			continue
		}
		// pigo reports a square centered at (Col, Row) with side Scale.
		regions = append(regions, FaceRegion{
			X:      det.Col - det.Scale/2,
			Y:      det.Row - det.Scale/2,
			Width:  det.Scale,
			Height: det.Scale,
		})
	}
	return regions, nil
}
