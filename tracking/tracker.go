// Package tracking extracts candidate circular targets from binary color
// masks. Each mask is processed independently per color class so two
// same-shaped objects of different colors can never be conflated.
package tracking

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// minCircularity rejects contours that are not round enough to be a target.
const minCircularity = 0.7

// Tracker turns per-color binary masks into Object candidates.
type Tracker struct {
	MinRadius int
	MaxRadius int
}

// NewTracker creates a tracker with the configured radius gate.
func NewTracker(minRadius, maxRadius int) *Tracker {
	return &Tracker{MinRadius: minRadius, MaxRadius: maxRadius}
}

// Track extracts objects of one color class from its binary mask.
// An empty or invalid mask yields no objects.
func (t *Tracker) Track(mask gocv.Mat, class ColorClass) []Object {
	if mask.Empty() {
		return nil
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var objects []Object
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		cx, cy, radius := gocv.MinEnclosingCircle(contour)
		r := int(radius)
		if r <= t.MinRadius || r >= t.MaxRadius {
			continue
		}

		area := gocv.ContourArea(contour)
		circleArea := math.Pi * float64(r) * float64(r)
		if circleArea <= 0 {
			continue
		}
		circularity := area / circleArea
		if circularity < minCircularity {
			continue
		}

		objects = append(objects, Object{
			X:           int(cx),
			Y:           int(cy),
			Radius:      r,
			Class:       class,
			Area:        area,
			Circularity: circularity,
		})
	}
	return objects
}

// TrackAll runs every class mask through Track and concatenates the
// results. Emission order carries no semantic meaning; downstream
// consumers must sort explicitly if they care about order.
func (t *Tracker) TrackAll(masks map[ColorClass]gocv.Mat) []Object {
	var all []Object
	for _, class := range TargetClasses {
		mask, ok := masks[class]
		if !ok {
			continue
		}
		all = append(all, t.Track(mask, class)...)
	}
	return all
}

// Center returns the object's pixel center as an image.Point.
func (o Object) Center() image.Point {
	return image.Pt(o.X, o.Y)
}
