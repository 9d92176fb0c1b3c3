// Package region finds the field structures that gate target selection:
// the hue-marked exclusion fence and the two team drop zones. Both are
// re-detected from scratch every frame; a transient occlusion makes a
// structure disappear for that frame only.
package region

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"rescuecam/segment"
	"rescuecam/tracking"
)

const (
	// defaultMinZoneArea rejects noise blobs that are too small to be a
	// drop zone (px²).
	defaultMinZoneArea = 5000.0

	// defaultFenceBuffer is the dilation applied to the allowed mask so
	// objects straddling the fence edge are not spuriously excluded.
	defaultFenceBuffer = 7

	// smoothEpsilon controls polygon simplification of the fence
	// boundary (px).
	smoothEpsilon = 5.0
)

// Detector locates the fence and the drop zones in a frame. It shares the
// segmenter's threshold configuration; the fence hue is configured as two
// adjacent sub-ranges there to tolerate hue-boundary drift.
type Detector struct {
	seg         *segment.Segmenter
	MinZoneArea float64
	FenceBuffer int
}

// NewDetector creates a detector over the given segmenter.
func NewDetector(seg *segment.Segmenter) *Detector {
	return &Detector{
		seg:         seg,
		MinZoneArea: defaultMinZoneArea,
		FenceBuffer: defaultFenceBuffer,
	}
}

// FenceMask is the per-frame allowed-area mask: non-zero pixels mark
// where detection is permitted. It implements the prioritizer's fence
// filter.
type FenceMask struct {
	mask gocv.Mat
}

// Close releases the underlying mask.
func (f *FenceMask) Close() {
	f.mask.Close()
}

// Mat exposes the raw allowed mask for overlay rendering.
func (f *FenceMask) Mat() gocv.Mat {
	return f.mask
}

// AllowedRatio returns the fraction of the disc centered at (x, y) that
// lies in the allowed area. A mask that covers everything (no fence found
// this frame) always reports 1.
func (f *FenceMask) AllowedRatio(x, y, radius int) float64 {
	if f == nil || f.mask.Empty() {
		return 1
	}
	rows, cols := f.mask.Rows(), f.mask.Cols()
	if radius < 1 {
		radius = 1
	}

	total, allowed := 0, 0
	for py := y - radius; py <= y+radius; py++ {
		for px := x - radius; px <= x+radius; px++ {
			dx, dy := px-x, py-y
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			total++
			if px < 0 || py < 0 || px >= cols || py >= rows {
				continue // off-frame counts as excluded
			}
			if f.mask.GetUCharAt(py, px) != 0 {
				allowed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(allowed) / float64(total)
}

// DetectFence thresholds the fence hue, suppresses noise while
// reconnecting gaps, keeps only the single largest fence region, smooths
// its boundary, and returns the inverted result as an allowed-area mask
// with a small dilation buffer. When no fence region is found the mask
// allows the whole frame.
func (d *Detector) DetectFence(frame gocv.Mat) *FenceMask {
	allowed := gocv.NewMat()
	out := &FenceMask{mask: allowed}
	if frame.Empty() {
		return out
	}

	raw := d.seg.Segment(frame, tracking.ClassPurple)
	defer raw.Close()
	if raw.Empty() {
		return out
	}

	small := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer small.Close()
	large := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(7, 7))
	defer large.Close()

	// Erode then dilate drops speckle, the extra dilation reconnects
	// fence segments broken by glare, close fills interior holes.
	gocv.Erode(raw, &raw, small)
	gocv.Dilate(raw, &raw, large)
	gocv.MorphologyEx(raw, &raw, gocv.MorphClose, large)

	contours := gocv.FindContours(raw, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return out
	}

	// Only the single largest connected region is the fence; anything
	// smaller is sensor noise.
	smoothed := gocv.ApproxPolyDP(contours.At(best), smoothEpsilon, true)
	defer smoothed.Close()

	fence := gocv.Zeros(frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC1)
	defer fence.Close()
	poly := gocv.NewPointsVector()
	defer poly.Close()
	poly.Append(smoothed)
	gocv.FillPoly(&fence, poly, color.RGBA{R: 255, G: 255, B: 255})

	gocv.BitwiseNot(fence, &allowed)
	if d.FenceBuffer > 0 {
		buffer := gocv.GetStructuringElement(gocv.MorphRect,
			image.Pt(d.FenceBuffer, d.FenceBuffer))
		defer buffer.Close()
		gocv.Dilate(allowed, &allowed, buffer)
	}
	return out
}
