package layout

// Zoom limits for interactive gestures.
const (
	MinZoom = 0.1
	MaxZoom = 8
)

// Zoom holds the interactive transform of one render surface. Gestures
// replace the current transform; [Zoom.Reset] discards them.
//
// Zoom is not safe for concurrent use.
type Zoom struct {
	fit     Transform
	current Transform
}

// NewZoom starts a zoom state at fit.
func NewZoom(fit Transform) *Zoom {
	return &Zoom{fit: fit, current: fit}
}

// Reset makes fit the current transform. Called on every new selection so
// manual zoom never carries over.
func (z *Zoom) Reset(fit Transform) {
	z.fit = fit
	z.current = fit
}

// Current returns the transform to draw with.
func (z *Zoom) Current() Transform { return z.current }

// Fit returns the transform of the last reset.
func (z *Zoom) Fit() Transform { return z.fit }

// Pan moves the drawing by (dx, dy) viewport units.
func (z *Zoom) Pan(dx, dy float64) Transform {
	z.current.TranslateX += dx
	z.current.TranslateY += dy
	return z.current
}

// ZoomAt scales by factor around viewport point (px, py), which stays fixed
// on screen. The resulting scale is clamped to [MinZoom, MaxZoom]; a
// non-positive factor is ignored.
func (z *Zoom) ZoomAt(factor, px, py float64) Transform {
	if factor <= 0 || z.current.Scale <= 0 {
		return z.current
	}
	next := min(max(z.current.Scale*factor, MinZoom), MaxZoom)
	ratio := next / z.current.Scale
	z.current = Transform{
		Scale:      next,
		TranslateX: px - (px-z.current.TranslateX)*ratio,
		TranslateY: py - (py-z.current.TranslateY)*ratio,
	}
	return z.current
}
