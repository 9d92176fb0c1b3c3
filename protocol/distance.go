package protocol

// Distance estimation constants, calibrated once against the competition
// targets: a 40mm ball spans its apparent diameter at 500mm.
const (
	actualDiameterMm    = 40
	referenceDistanceMm = 500

	minDistanceMm     = 100
	maxDistanceMm     = 2000
	defaultDistanceMm = 1000
)

// EstimateDistance converts an apparent pixel radius into an estimated
// distance in millimeters using the inverse size relationship, clamped to
// [100, 2000]. A non-positive radius yields the default 1000mm instead of
// a division fault.
func EstimateDistance(pixelRadius int) int {
	if pixelRadius <= 0 {
		return defaultDistanceMm
	}
	d := (actualDiameterMm * referenceDistanceMm) / (2 * pixelRadius)
	if d < minDistanceMm {
		return minDistanceMm
	}
	if d > maxDistanceMm {
		return maxDistanceMm
	}
	return d
}
