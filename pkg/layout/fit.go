package layout

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/loomviz/pkg/errors"
)

// Margin is the padding added to both bounding box dimensions before fitting.
const Margin = 80

// Zoom caps for the two presentation modes.
const (
	MaxScaleDetail   = 1.5
	MaxScaleOverview = 1.2
)

// Viewport is the client area of a render surface.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Transform is a uniform scale followed by a translation.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

// Identity is the transform that leaves a drawing unchanged.
var Identity = Transform{Scale: 1}

// String renders the transform as an SVG transform attribute value.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", t.TranslateX, t.TranslateY, t.Scale)
}

// Apply maps a drawing point into viewport coordinates.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.Scale + t.TranslateX, Y: p.Y*t.Scale + t.TranslateY}
}

// Fit returns the transform that centers bbox in vp, scaled to leave [Margin]
// around it on the limiting axis and never beyond maxScale.
//
// Returns an INVALID_INPUT error for a non-positive viewport or maxScale, or a
// negative bounding box. An empty drawing (zero box) is valid.
func Fit(bbox BoundingBox, vp Viewport, maxScale float64) (Transform, error) {
	if err := errs.ValidateViewport(vp.Width, vp.Height, maxScale); err != nil {
		return Transform{}, err
	}
	if bbox.Width < 0 || bbox.Height < 0 {
		return Transform{}, errs.New(errs.ErrCodeInvalidInput, "bounding box must not be negative, got %gx%g", bbox.Width, bbox.Height)
	}

	scale := math.Min(math.Min(
		vp.Width/(bbox.Width+Margin),
		vp.Height/(bbox.Height+Margin)),
		maxScale)

	return Transform{
		Scale:      scale,
		TranslateX: (vp.Width - bbox.Width*scale) / 2,
		TranslateY: (vp.Height - bbox.Height*scale) / 2,
	}, nil
}
