// Package vision locates the dominant face in an image and prepares the
// cropped sample handed to the face emotion classifier.
package vision

import (
	"context"
	"image"
	"log/slog"
)

// Detector finds face bounding boxes in a decoded image. Implementations
// must be safe for concurrent use; an empty result means no face, which
// is a first-class outcome rather than an error.
type Detector interface {
	Name() string
	DetectFaces(ctx context.Context, img image.Image) ([]FaceRegion, error)
}

// DetectorFactory initializes one detection strategy. Factories are tried
// in priority order at startup; the first that succeeds becomes the
// process-lifetime detector.
type DetectorFactory func() (Detector, error)

// ResolveDetector runs the ranked factory list and returns the first
// strategy that initializes.
func ResolveDetector(factories ...DetectorFactory) (Detector, error) {
	var lastErr error
	for _, factory := range factories {
		det, err := factory()
		if err != nil {
			slog.Warn("[FaceLocator] Detector strategy unavailable",
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		slog.Info("[FaceLocator] Detector strategy selected",
			slog.String("strategy", det.Name()))
		return det, nil
	}
	return nil, lastErr
}

// Locator wraps the active detection strategy with the selection and
// padding policy shared by all strategies.
type Locator struct {
	detector     Detector
	paddingRatio float64
}

func NewLocator(detector Detector, paddingRatio float64) *Locator {
	return &Locator{detector: detector, paddingRatio: paddingRatio}
}

// Locate returns the padded region of the single largest detected face.
// The boolean is false when no face was found; callers branch on it
// explicitly and must not treat it as a failure.
func (l *Locator) Locate(ctx context.Context, img image.Image) (FaceRegion, bool, error) {
	regions, err := l.detector.DetectFaces(ctx, img)
	if err != nil {
		return FaceRegion{}, false, err
	}
	if len(regions) == 0 {
		return FaceRegion{}, false, nil
	}

	bounds := img.Bounds()
	region := largestRegion(regions).PadAndClamp(l.paddingRatio, bounds.Dx(), bounds.Dy())
	return region, true, nil
}

// Crop extracts the located region as a standalone image for the
// classifier. The face classifier always runs on this crop, never on the
// full frame.
func Crop(img image.Image, region FaceRegion) image.Image {
	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			out.Set(x, y, img.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return out
}
