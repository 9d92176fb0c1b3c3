// Package segment converts color frames into per-class binary masks using
// multi-range HSV thresholding with optional illumination-adaptive
// threshold shifting.
package segment

import (
	"image"

	"gocv.io/x/gocv"

	"rescuecam/tracking"
)

// HSV is one corner of a threshold range in OpenCV's H(0-180), S(0-255),
// V(0-255) convention.
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Range is a single inclusive lower/upper HSV threshold pair. A hue that
// wraps past zero (red) is configured as two disjoint ranges OR-ed
// together.
type Range struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// morphKernelSize is the open/close kernel used to remove speckle noise
// and fill small holes in the raw threshold output.
const morphKernelSize = 5

// Segmenter thresholds frames against the configured base ranges. Base
// ranges are immutable after construction; the adaptive-lighting path only
// ever derives a working copy (see adaptive.go).
type Segmenter struct {
	base    map[tracking.ColorClass][]Range
	adapter *LightAdapter // nil when adaptive mode is off
}

// NewSegmenter creates a segmenter over the given base threshold ranges.
func NewSegmenter(ranges map[tracking.ColorClass][]Range) *Segmenter {
	base := make(map[tracking.ColorClass][]Range, len(ranges))
	for class, rs := range ranges {
		base[class] = append([]Range(nil), rs...)
	}
	return &Segmenter{base: base}
}

// EnableAdaptiveLighting turns on illumination-adaptive threshold
// shifting with the given recalibration delta (brightness units, 0-255).
func (s *Segmenter) EnableAdaptiveLighting(delta float64) {
	s.adapter = NewLightAdapter(delta)
}

// Ranges returns the working threshold ranges for a class: the adaptive
// derivation when enabled and calibrated, otherwise the base ranges.
// Unconfigured classes return nil.
func (s *Segmenter) Ranges(class tracking.ColorClass) []Range {
	base, ok := s.base[class]
	if !ok {
		return nil
	}
	if s.adapter == nil {
		return base
	}
	return s.adapter.Derive(base)
}

// Segment thresholds one frame against one color class and returns the
// cleaned binary mask. An empty frame or an unconfigured class yields an
// empty mask; Segment never fails. The caller owns the returned Mat.
func (s *Segmenter) Segment(frame gocv.Mat, class tracking.ColorClass) gocv.Mat {
	mask := gocv.NewMat()
	if frame.Empty() {
		return mask
	}
	ranges := s.Ranges(class)
	if len(ranges) == 0 {
		return mask
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	for i, r := range ranges {
		lower := gocv.NewScalar(r.Lower.H, r.Lower.S, r.Lower.V, 0)
		upper := gocv.NewScalar(r.Upper.H, r.Upper.S, r.Upper.V, 0)

		partial := gocv.NewMat()
		gocv.InRangeWithScalar(hsv, lower, upper, &partial)
		if i == 0 {
			partial.CopyTo(&mask)
		} else {
			gocv.BitwiseOr(mask, partial, &mask)
		}
		partial.Close()
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect,
		image.Pt(morphKernelSize, morphKernelSize))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

	return mask
}

// SegmentAll runs Segment for every requested class. The caller owns the
// returned Mats and must Close each one. When adaptive lighting is
// enabled the frame's brightness is observed once, before thresholding.
func (s *Segmenter) SegmentAll(frame gocv.Mat, classes []tracking.ColorClass) map[tracking.ColorClass]gocv.Mat {
	if s.adapter != nil && !frame.Empty() {
		s.adapter.Observe(meanBrightness(frame))
	}
	masks := make(map[tracking.ColorClass]gocv.Mat, len(classes))
	for _, class := range classes {
		masks[class] = s.Segment(frame, class)
	}
	return masks
}

// CloseMasks releases every mask produced by SegmentAll.
func CloseMasks(masks map[tracking.ColorClass]gocv.Mat) {
	for _, m := range masks {
		m.Close()
	}
}

// meanBrightness is the mean of the V channel of the frame.
func meanBrightness(frame gocv.Mat) float64 {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	channels := gocv.Split(hsv)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	if len(channels) < 3 {
		return 0
	}
	mean := channels[2].Mean()
	return mean.Val1
}
