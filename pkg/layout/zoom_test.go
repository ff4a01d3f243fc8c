package layout

import (
	"math"
	"testing"
)

func TestZoomReset(t *testing.T) {
	fit := Transform{Scale: 0.5, TranslateX: 10, TranslateY: 20}
	z := NewZoom(fit)
	z.Pan(100, 100)
	z.ZoomAt(2, 0, 0)
	if z.Current() == fit {
		t.Fatal("gestures should change the transform")
	}

	next := Transform{Scale: 1.2, TranslateX: 1, TranslateY: 2}
	z.Reset(next)
	if z.Current() != next || z.Fit() != next {
		t.Errorf("after Reset: current %+v fit %+v, want %+v", z.Current(), z.Fit(), next)
	}
}

func TestZoomPan(t *testing.T) {
	z := NewZoom(Identity)
	got := z.Pan(5, -3)
	if got != (Transform{Scale: 1, TranslateX: 5, TranslateY: -3}) {
		t.Errorf("Pan() = %+v", got)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	z := NewZoom(Transform{Scale: 1, TranslateX: 50, TranslateY: 30})
	anchor := Point{200, 100}

	// The drawing point under the anchor before zooming.
	before := Point{X: (anchor.X - 50) / 1, Y: (anchor.Y - 30) / 1}

	tr := z.ZoomAt(2, anchor.X, anchor.Y)
	after := tr.Apply(before)
	if math.Abs(after.X-anchor.X) > 1e-9 || math.Abs(after.Y-anchor.Y) > 1e-9 {
		t.Errorf("anchor moved to %+v, want %+v", after, anchor)
	}
	if tr.Scale != 2 {
		t.Errorf("scale = %g, want 2", tr.Scale)
	}
}

func TestZoomAtClamps(t *testing.T) {
	z := NewZoom(Identity)
	if got := z.ZoomAt(100, 0, 0).Scale; got != MaxZoom {
		t.Errorf("scale = %g, want %g", got, float64(MaxZoom))
	}
	if got := z.ZoomAt(1e-6, 0, 0).Scale; got != MinZoom {
		t.Errorf("scale = %g, want %g", got, MinZoom)
	}
	before := z.Current()
	if got := z.ZoomAt(-1, 0, 0); got != before {
		t.Errorf("non-positive factor changed transform: %+v", got)
	}
}
