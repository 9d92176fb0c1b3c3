package tracking

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func blankMask() gocv.Mat {
	return gocv.Zeros(480, 640, gocv.MatTypeCV8UC1)
}

func white() color.RGBA {
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

func TestTrackFindsCircles(t *testing.T) {
	tracker := NewTracker(10, 100)

	mask := blankMask()
	defer mask.Close()
	gocv.Circle(&mask, image.Pt(120, 200), 30, white(), -1)
	gocv.Circle(&mask, image.Pt(400, 100), 45, white(), -1)

	objects := tracker.Track(mask, ClassRed)
	require.Len(t, objects, 2)

	for _, obj := range objects {
		assert.Equal(t, ClassRed, obj.Class)
		assert.GreaterOrEqual(t, obj.Circularity, 0.7)
		assert.Positive(t, obj.Area)
	}
}

func TestTrackRadiusGate(t *testing.T) {
	tracker := NewTracker(10, 100)

	mask := blankMask()
	defer mask.Close()
	gocv.Circle(&mask, image.Pt(100, 100), 5, white(), -1)   // too small
	gocv.Circle(&mask, image.Pt(300, 300), 150, white(), -1) // too large

	assert.Empty(t, tracker.Track(mask, ClassBlue))
}

func TestTrackRejectsNonCircularBlobs(t *testing.T) {
	tracker := NewTracker(10, 200)

	mask := blankMask()
	defer mask.Close()
	// A long thin bar has a big enclosing circle but little area.
	gocv.Rectangle(&mask, image.Rect(100, 230, 400, 250), white(), -1)

	assert.Empty(t, tracker.Track(mask, ClassYellow))
}

func TestTrackEmptyMask(t *testing.T) {
	tracker := NewTracker(10, 100)
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Empty(t, tracker.Track(empty, ClassRed))
}

func TestTrackAllKeepsClassesSeparate(t *testing.T) {
	tracker := NewTracker(10, 100)

	redMask := blankMask()
	defer redMask.Close()
	gocv.Circle(&redMask, image.Pt(150, 150), 25, white(), -1)

	blueMask := blankMask()
	defer blueMask.Close()
	gocv.Circle(&blueMask, image.Pt(150, 150), 25, white(), -1)

	objects := tracker.TrackAll(map[ColorClass]gocv.Mat{
		ClassRed:  redMask,
		ClassBlue: blueMask,
	})
	require.Len(t, objects, 2, "same-shaped objects of different colors stay distinct")

	classes := map[ColorClass]int{}
	for _, obj := range objects {
		classes[obj.Class]++
	}
	assert.Equal(t, 1, classes[ClassRed])
	assert.Equal(t, 1, classes[ClassBlue])
}

func TestParseColorClass(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]ColorClass{
		"red": ClassRed, "blue": ClassBlue, "yellow": ClassYellow,
		"black": ClassBlack, "purple": ClassPurple,
	} {
		got, err := ParseColorClass(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	_, err := ParseColorClass("mauve")
	assert.Error(t, err)
}

func TestOpponent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ClassBlue, ClassRed.Opponent())
	assert.Equal(t, ClassRed, ClassBlue.Opponent())
}
