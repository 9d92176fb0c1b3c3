package region

import (
	"image"

	"gocv.io/x/gocv"

	"rescuecam/tracking"
)

// Zone is one team's drop zone as found in the current frame.
type Zone struct {
	Owner    tracking.ColorClass
	Boundary []image.Point // closed polygon, detector emission order
	Bounds   image.Rectangle
	Area     float64
}

// Contains reports whether the point lies inside the zone boundary.
// Zone membership is a center-point test by convention; the fence uses
// area overlap instead (see priority.Selector).
func (z *Zone) Contains(pt image.Point) bool {
	if z == nil || len(z.Boundary) < 3 {
		return false
	}
	return pointInPolygon(z.Boundary, pt)
}

// Zones holds the per-frame zone detections. A missing entry means no
// qualifying blob was found for that team this frame.
type Zones struct {
	ByOwner map[tracking.ColorClass]*Zone
}

// ZoneAt returns the owner of the zone containing the point, if any.
func (z *Zones) ZoneAt(pt image.Point) (tracking.ColorClass, bool) {
	if z == nil {
		return 0, false
	}
	for owner, zone := range z.ByOwner {
		if zone.Contains(pt) {
			return owner, true
		}
	}
	return 0, false
}

// Get returns one team's zone, or nil when it was not seen this frame.
func (z *Zones) Get(owner tracking.ColorClass) *Zone {
	if z == nil {
		return nil
	}
	return z.ByOwner[owner]
}

// DetectZones finds both team drop zones. For each team hue the frame is
// thresholded, the blob is consolidated with a close and a dilate, and the
// largest contour above the minimum area becomes the zone. Teams whose
// blob is absent or too small simply have no zone this frame.
func (d *Detector) DetectZones(frame gocv.Mat) *Zones {
	zones := &Zones{ByOwner: make(map[tracking.ColorClass]*Zone)}
	if frame.Empty() {
		return zones
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(15, 15))
	defer kernel.Close()

	for _, owner := range tracking.TeamClasses {
		mask := d.seg.Segment(frame, owner)
		if mask.Empty() {
			mask.Close()
			continue
		}
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
		gocv.Dilate(mask, &mask, kernel)

		contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		best, bestArea := -1, 0.0
		for i := 0; i < contours.Size(); i++ {
			if a := gocv.ContourArea(contours.At(i)); a > bestArea {
				best, bestArea = i, a
			}
		}
		if best >= 0 && bestArea >= d.MinZoneArea {
			contour := contours.At(best)
			zones.ByOwner[owner] = &Zone{
				Owner:    owner,
				Boundary: contour.ToPoints(),
				Bounds:   gocv.BoundingRect(contour),
				Area:     bestArea,
			}
		}
		contours.Close()
		mask.Close()
	}
	return zones
}
