package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"rescuecam/config"
	"rescuecam/overlay"
	"rescuecam/priority"
	"rescuecam/region"
	"rescuecam/segment"
	"rescuecam/tracking"
)

func newTestCore(team tracking.ColorClass, withRenderer bool) *Core {
	seg := segment.NewSegmenter(config.DefaultThresholds())
	tracker := tracking.NewTracker(10, 100)
	regions := region.NewDetector(seg)
	selector := priority.NewSelector(priority.DefaultRuleset(team))

	var renderer *overlay.Renderer
	if withRenderer {
		renderer = overlay.NewRenderer((&config.Strategy{}).Palette())
	}
	return NewCore(seg, tracker, regions, selector, renderer)
}

// matchField returns a white 640x480 field frame.
func matchField() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0),
		480, 640, gocv.MatTypeCV8UC3)
}

func TestProcessFrameEndToEnd(t *testing.T) {
	core := newTestCore(tracking.ClassRed, false)

	frame := matchField()
	defer frame.Close()
	// One team-colored circle (r=25) in the open field and one
	// enemy-colored circle (r=30): only the team object may be chosen.
	gocv.Circle(&frame, image.Pt(200, 240), 25, color.RGBA{R: 255}, -1)
	gocv.Circle(&frame, image.Pt(420, 240), 30, color.RGBA{B: 255}, -1)

	result := core.ProcessFrame(&frame, priority.Normal, nil, "search")

	require.Len(t, result.Objects, 2, "both circles must be detected")
	require.NotNil(t, result.Target)
	assert.Equal(t, tracking.ClassRed, result.Target.Class)
	assert.InDelta(t, 200, result.Target.X, 3)
	assert.InDelta(t, 240, result.Target.Y, 3)
	assert.InDelta(t, 25, result.Target.Radius, 3)
}

func TestProcessFrameFenceExcludesHighScorer(t *testing.T) {
	core := newTestCore(tracking.ClassRed, false)

	frame := matchField()
	defer frame.Close()
	// Fence strip with a core (black) ball inside it; a team ball sits
	// in the open field.
	gocv.Rectangle(&frame, image.Rect(0, 0, 140, 480), color.RGBA{R: 128, B: 128}, -1)
	gocv.Circle(&frame, image.Pt(70, 240), 25, color.RGBA{}, -1)
	gocv.Circle(&frame, image.Pt(400, 240), 25, color.RGBA{R: 255}, -1)

	result := core.ProcessFrame(&frame, priority.Normal, nil, "search")

	require.NotNil(t, result.Target)
	assert.Equal(t, tracking.ClassRed, result.Target.Class,
		"fenced core ball must not outrank the open team ball")
}

func TestProcessFrameFirstPickLatch(t *testing.T) {
	core := newTestCore(tracking.ClassRed, false)

	frame := matchField()
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(200, 240), 25, color.RGBA{}, -1)       // core
	gocv.Circle(&frame, image.Pt(420, 240), 25, color.RGBA{R: 255}, -1) // team

	pending := core.ProcessFrame(&frame, priority.FirstPickPending, nil, "search")
	require.NotNil(t, pending.Target)
	assert.Equal(t, tracking.ClassRed, pending.Target.Class)

	latched := core.ProcessFrame(&frame, priority.Normal, nil, "search")
	require.NotNil(t, latched.Target)
	assert.Equal(t, tracking.ClassBlack, latched.Target.Class)
}

func TestProcessFrameEmptyFrame(t *testing.T) {
	core := newTestCore(tracking.ClassRed, false)

	empty := gocv.NewMat()
	defer empty.Close()
	result := core.ProcessFrame(&empty, priority.Normal, nil, "search")
	assert.Nil(t, result.Target)
	assert.Empty(t, result.Objects)
}

func TestProcessFrameAnnotatesInPlace(t *testing.T) {
	core := newTestCore(tracking.ClassRed, true)

	frame := matchField()
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(200, 240), 25, color.RGBA{R: 255}, -1)

	before := frame.Clone()
	defer before.Close()

	result := core.ProcessFrame(&frame, priority.Normal, nil, "search")
	require.NotNil(t, result.Target)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(frame, before, &diff)
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(diff, &gray, gocv.ColorBGRToGray)
	assert.NotZero(t, gocv.CountNonZero(gray), "annotation must change the frame")
}

func TestZoneSmoothingBridgesOcclusion(t *testing.T) {
	core := newTestCore(tracking.ClassRed, false)
	core.EnableZoneSmoothing(3)

	withZone := matchField()
	defer withZone.Close()
	gocv.Rectangle(&withZone, image.Rect(440, 40, 620, 200), color.RGBA{R: 255}, -1)

	bare := matchField()
	defer bare.Close()

	seen := core.ProcessFrame(&withZone, priority.Normal, nil, "search")
	require.NotNil(t, seen.Zones.Get(tracking.ClassRed))

	// The zone vanishes; the hold keeps it for three frames, then drops it.
	for i := 0; i < 3; i++ {
		held := core.ProcessFrame(&bare, priority.Normal, nil, "search")
		assert.NotNil(t, held.Zones.Get(tracking.ClassRed), "frame %d within ttl", i)
	}
	gone := core.ProcessFrame(&bare, priority.Normal, nil, "search")
	assert.Nil(t, gone.Zones.Get(tracking.ClassRed))
}
