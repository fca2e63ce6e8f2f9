// Package render turns a positioned editor document into a binary
// presentation artifact, with a plain-text degraded mode.
package render

import "math"

// PowerPoint uses English Metric Units; CSS assumes 96 px per inch.
const (
	EMUPerInch = 914400
	DPI        = 96
	EMUPerPx   = EMUPerInch / DPI // 9525
)

// EMU converts page pixels to EMU.
func EMU(px float64) int64 {
	return int64(math.Round(px * EMUPerPx))
}

// PxFromEMU is the inverse of EMU, used for round-trip checks.
func PxFromEMU(emu int64) float64 {
	return float64(emu) / EMUPerPx
}

// PtFromPx converts pixel font sizes to points. 96 px = 72 pt.
func PtFromPx(px float64) float64 {
	return px * 0.75
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rect is a pixel-space rectangle.
type Rect struct {
	X, Y, W, H float64
}

// ContainRect scales an iw×ih image uniformly to fit inside the frame and
// centers it. Nothing is cropped; the frame letterboxes the remainder.
func ContainRect(frame Rect, iw, ih float64) Rect {
	if iw <= 0 || ih <= 0 {
		return frame
	}
	scale := math.Min(frame.W/iw, frame.H/ih)
	dw, dh := iw*scale, ih*scale
	return Rect{
		X: frame.X + (frame.W-dw)/2,
		Y: frame.Y + (frame.H-dh)/2,
		W: dw,
		H: dh,
	}
}

// CropFractions are the per-edge fractions of the source image removed by a
// cover fit. Only one axis ever crops, symmetrically.
type CropFractions struct {
	Top, Bottom, Left, Right float64
}

// CoverCrop computes the symmetric center crop that makes an iw×ih image
// fill a frameW×frameH frame without distortion. When the image is
// relatively wider than the frame the horizontal axis is cropped, otherwise
// the vertical axis.
func CoverCrop(frameW, frameH, iw, ih float64) CropFractions {
	if iw <= 0 || ih <= 0 || frameW <= 0 || frameH <= 0 {
		return CropFractions{}
	}
	rx := frameW / iw
	ry := frameH / ih
	if rx > ry {
		// The width ratio dominates, so the scaled image overflows in height.
		keep := clamp01(frameH / (ih * rx))
		each := math.Max(0, (1-keep)/2)
		return CropFractions{Top: each, Bottom: each}
	}
	keep := clamp01(frameW / (iw * ry))
	each := math.Max(0, (1-keep)/2)
	return CropFractions{Left: each, Right: each}
}
