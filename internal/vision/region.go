package vision

// FaceRegion is a face bounding box in source-image pixel coordinates.
type FaceRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r FaceRegion) Area() int {
	return r.Width * r.Height
}

// PadAndClamp expands the box by ratio*max(width, height) on every side,
// then clamps to the image bounds. Detector boxes are tight; classifying
// on a slightly wider crop keeps the full face in frame without pulling
// in much background.
func (r FaceRegion) PadAndClamp(ratio float64, imgWidth, imgHeight int) FaceRegion {
	longest := r.Width
	if r.Height > longest {
		longest = r.Height
	}
	padding := int(float64(longest) * ratio)

	x := r.X - padding
	if x < 0 {
		x = 0
	}
	y := r.Y - padding
	if y < 0 {
		y = 0
	}
	w := r.Width + 2*padding
	if x+w > imgWidth {
		w = imgWidth - x
	}
	h := r.Height + 2*padding
	if y+h > imgHeight {
		h = imgHeight - y
	}

	return FaceRegion{X: x, Y: y, Width: w, Height: h}
}

// largestRegion picks the region with the greatest bounding-box area.
// Ties go to the first encountered.
func largestRegion(regions []FaceRegion) FaceRegion {
	largest := regions[0]
	for _, r := range regions[1:] {
		if r.Area() > largest.Area() {
			largest = r
		}
	}
	return largest
}
