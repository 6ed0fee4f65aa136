package vision_test

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/internal/vision"
)

func Test_PadAndClamp_expands_interior_box_symmetrically(t *testing.T) {
	region := vision.FaceRegion{X: 100, Y: 100, Width: 50, Height: 40}

	padded := region.PadAndClamp(0.2, 640, 480)

	// padding = 0.2 * max(50, 40) = 10 on every side
	assert.Equal(t, vision.FaceRegion{X: 90, Y: 90, Width: 70, Height: 60}, padded)
}

func Test_PadAndClamp_never_leaves_image_bounds(t *testing.T) {
	cases := []vision.FaceRegion{
		{X: 0, Y: 0, Width: 30, Height: 30},
		{X: 610, Y: 450, Width: 30, Height: 30},
		{X: 5, Y: 460, Width: 20, Height: 20},
	}

	for _, region := range cases {
		padded := region.PadAndClamp(0.5, 640, 480)

		assert.GreaterOrEqual(t, padded.X, 0)
		assert.GreaterOrEqual(t, padded.Y, 0)
		assert.LessOrEqual(t, padded.X+padded.Width, 640)
		assert.LessOrEqual(t, padded.Y+padded.Height, 480)
	}
}

type stubDetector struct {
	regions []vision.FaceRegion
}

func (d *stubDetector) Name() string { return "stub" }

func (d *stubDetector) DetectFaces(ctx context.Context, img image.Image) ([]vision.FaceRegion, error) {
	return d.regions, nil
}

func Test_Locate_picks_the_largest_face(t *testing.T) {
	detector := &stubDetector{regions: []vision.FaceRegion{
		{X: 10, Y: 10, Width: 20, Height: 20},
		{X: 200, Y: 200, Width: 100, Height: 100},
		{X: 400, Y: 50, Width: 40, Height: 40},
	}}
	locator := vision.NewLocator(detector, 0)
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))

	region, found, err := locator.Locate(context.Background(), img)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, vision.FaceRegion{X: 200, Y: 200, Width: 100, Height: 100}, region)
}

func Test_Locate_reports_no_face_without_error(t *testing.T) {
	locator := vision.NewLocator(&stubDetector{}, 0.2)
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	_, found, err := locator.Locate(context.Background(), img)

	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Locate_ties_go_to_the_first_detected_face(t *testing.T) {
	detector := &stubDetector{regions: []vision.FaceRegion{
		{X: 10, Y: 10, Width: 50, Height: 50},
		{X: 300, Y: 300, Width: 50, Height: 50},
	}}
	locator := vision.NewLocator(detector, 0)
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))

	region, found, err := locator.Locate(context.Background(), img)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10, region.X)
}

func Test_Crop_returns_the_region_dimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	region := vision.FaceRegion{X: 40, Y: 60, Width: 80, Height: 70}

	crop := vision.Crop(img, region)

	assert.Equal(t, 80, crop.Bounds().Dx())
	assert.Equal(t, 70, crop.Bounds().Dy())
}
