// Package vision composes the per-frame pipeline: segmentation, shape
// tracking, region detection, target selection, and annotation. One Core
// call handles exactly one frame; detected objects and zones are owned by
// the decision cycle and discarded afterwards.
package vision

import (
	"gocv.io/x/gocv"

	"rescuecam/overlay"
	"rescuecam/priority"
	"rescuecam/region"
	"rescuecam/segment"
	"rescuecam/tracking"
)

// Result is one frame's pipeline output. When a renderer is configured
// the input frame is annotated in place.
type Result struct {
	Objects []tracking.Object
	Zones   *region.Zones
	Target  *tracking.Object
}

// Core wires the pipeline stages together.
type Core struct {
	segmenter *segment.Segmenter
	tracker   *tracking.Tracker
	regions   *region.Detector
	selector  *priority.Selector
	renderer  *overlay.Renderer // nil disables annotation

	zoneHold *zoneHold // nil disables zone smoothing
}

// NewCore builds a pipeline over already-constructed stages. renderer may
// be nil when no annotated output is wanted.
func NewCore(seg *segment.Segmenter, tracker *tracking.Tracker, regions *region.Detector,
	selector *priority.Selector, renderer *overlay.Renderer) *Core {
	return &Core{
		segmenter: seg,
		tracker:   tracker,
		regions:   regions,
		selector:  selector,
		renderer:  renderer,
	}
}

// EnableZoneSmoothing keeps the last known zone alive for up to ttlFrames
// frames of transient occlusion. It is a layer over the detector, not
// part of it; the detectors themselves stay stateless.
func (c *Core) EnableZoneSmoothing(ttlFrames int) {
	c.zoneHold = newZoneHold(ttlFrames)
}

// ProcessFrame runs the full pipeline on one frame. pick and held
// describe the sequencer's current carrying state; the frame is annotated
// in place when a renderer is configured.
func (c *Core) ProcessFrame(frame *gocv.Mat, pick priority.PickState, held []tracking.ColorClass, status string) Result {
	if frame == nil || frame.Empty() {
		return Result{}
	}

	masks := c.segmenter.SegmentAll(*frame, tracking.TargetClasses)
	objects := c.tracker.TrackAll(masks)
	segment.CloseMasks(masks)

	fence := c.regions.DetectFence(*frame)
	defer fence.Close()

	zones := c.regions.DetectZones(*frame)
	if c.zoneHold != nil {
		zones = c.zoneHold.update(zones)
	}

	target := c.selector.SelectTarget(objects, zones, fence, pick, held)

	if c.renderer != nil {
		c.renderer.DrawFence(frame, fence)
		c.renderer.DrawZones(frame, zones)
		c.renderer.DrawObjects(frame, objects)
		c.renderer.DrawTarget(frame, target)
		c.renderer.DrawStatus(frame, status, len(held))
	}

	return Result{Objects: objects, Zones: zones, Target: target}
}
