package main

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescuecam/priority"
	"rescuecam/protocol"
	"rescuecam/region"
	"rescuecam/tracking"
	"rescuecam/vision"
)

func targetResult(class tracking.ColorClass, radius int) vision.Result {
	return vision.Result{
		Target: &tracking.Object{X: 320, Y: 200, Radius: radius, Class: class},
	}
}

func zonesWith(owner tracking.ColorClass) *region.Zones {
	return &region.Zones{ByOwner: map[tracking.ColorClass]*region.Zone{
		owner: {
			Owner:    owner,
			Boundary: []image.Point{{440, 40}, {620, 40}, {620, 200}, {440, 200}},
			Bounds:   image.Rect(440, 40, 620, 200),
		},
	}}
}

func TestSequencerFullCycle(t *testing.T) {
	teamColor = tracking.ClassRed
	seq := newSequencer()
	require.Equal(t, stateSearchTarget, seq.state)
	require.Equal(t, priority.FirstPickPending, seq.pick)

	// Target appears: move to approach without sending anything yet.
	sends := seq.step(targetResult(tracking.ClassRed, 15), 640, 480)
	assert.Empty(t, sends)
	assert.Equal(t, stateApproach, seq.state)

	// Approach sends one target report per frame.
	sends = seq.step(targetResult(tracking.ClassRed, 15), 640, 480)
	require.Len(t, sends, 1)
	assert.Len(t, sends[0], protocol.TargetFrameLen)
	assert.Equal(t, stateApproach, seq.state)

	// Close enough: the next frame triggers the grasp.
	seq.step(targetResult(tracking.ClassRed, 35), 640, 480)
	require.Equal(t, stateGrasp, seq.state)

	// During the dwell the grasp command is repeated.
	sends = seq.step(vision.Result{}, 640, 480)
	require.Len(t, sends, 1)
	assert.Equal(t, protocol.EncodeGrasp(true), sends[0])

	// Dwell elapsed: the object is held and the first-pick latch flips.
	seq.stateSince = time.Now().Add(-actionDwell - time.Millisecond)
	seq.step(vision.Result{}, 640, 480)
	assert.Equal(t, stateSearchZone, seq.state)
	assert.Equal(t, priority.Normal, seq.pick)
	assert.Equal(t, []tracking.ColorClass{tracking.ClassRed}, seq.held)

	// No zone in sight: rotate to look for one.
	sends = seq.step(vision.Result{}, 640, 480)
	require.Len(t, sends, 1)
	assert.Equal(t, protocol.EncodeRotate(zoneSearchSpeed), sends[0])

	// Our zone appears: place, dwell, and the batch is released.
	seq.step(vision.Result{Zones: zonesWith(tracking.ClassRed)}, 640, 480)
	require.Equal(t, statePlace, seq.state)
	sends = seq.step(vision.Result{}, 640, 480)
	require.Len(t, sends, 1)
	assert.Equal(t, protocol.EncodePlace(0), sends[0])

	seq.stateSince = time.Now().Add(-actionDwell - time.Millisecond)
	seq.step(vision.Result{}, 640, 480)
	assert.Equal(t, stateSearchTarget, seq.state)
	assert.Empty(t, seq.held)
	assert.Equal(t, priority.Normal, seq.pick, "the latch never reverts")
}

func TestSequencerStopAfterEmptySearch(t *testing.T) {
	teamColor = tracking.ClassRed
	seq := newSequencer()

	var sends [][]byte
	for i := 0; i < noTargetStopAfter; i++ {
		sends = seq.step(vision.Result{}, 640, 480)
	}
	require.Len(t, sends, 1, "stop goes out after %d empty frames", noTargetStopAfter)
	assert.Equal(t, protocol.EncodeStop(), sends[0])
	assert.Equal(t, stateSearchTarget, seq.state)
}

func TestSequencerLostTargetReturnsToSearch(t *testing.T) {
	teamColor = tracking.ClassRed
	seq := newSequencer()

	seq.step(targetResult(tracking.ClassRed, 15), 640, 480)
	require.Equal(t, stateApproach, seq.state)

	var sends [][]byte
	for i := 0; i < targetLostAfter; i++ {
		sends = seq.step(vision.Result{}, 640, 480)
	}
	assert.Equal(t, stateSearchTarget, seq.state)
	require.Len(t, sends, 1)
	assert.Equal(t, protocol.EncodeStop(), sends[0])
}

func TestSequencerApproachTimesOutIntoGrasp(t *testing.T) {
	teamColor = tracking.ClassRed
	seq := newSequencer()
	seq.step(targetResult(tracking.ClassRed, 12), 640, 480)

	// A target that never grows still gets a grasp attempt eventually.
	for i := 0; i < approachMaxFrames; i++ {
		seq.step(targetResult(tracking.ClassRed, 12), 640, 480)
	}
	assert.Equal(t, stateGrasp, seq.state)
}

func TestSequencerTargetReportEncoding(t *testing.T) {
	teamColor = tracking.ClassRed
	seq := newSequencer()
	seq.step(targetResult(tracking.ClassBlack, 20), 640, 480)

	sends := seq.step(targetResult(tracking.ClassBlack, 20), 640, 480)
	require.Len(t, sends, 1)

	// dx = 320-320, dy = 240-200, class = core, distance from r=20.
	want := protocol.EncodeTarget(0, 40, protocol.IDBlack, protocol.EstimateDistance(20))
	assert.Equal(t, want, sends[0])
}
