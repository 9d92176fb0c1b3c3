package segment

import (
	"gonum.org/v1/gonum/stat"
)

// brightnessWindow is how many recent frames feed the smoothed light
// level, so a single glinting frame cannot trigger a recalibration.
const brightnessWindow = 8

// LightAdapter derives working threshold ranges from the base ranges when
// scene brightness drifts. The base ranges are never mutated: every
// recalibration recomputes a scale factor and Derive applies it to a
// fresh copy on demand.
type LightAdapter struct {
	delta float64 // brightness change required to recalibrate

	samples []float64
	// level is the light level at the last recalibration; reference is
	// the level observed when the adapter first calibrated, against
	// which the scale factor is computed.
	level      float64
	reference  float64
	scale      float64
	calibrated bool
}

// NewLightAdapter creates an adapter that recalibrates once the smoothed
// brightness moves more than delta from the previous recalibration level.
func NewLightAdapter(delta float64) *LightAdapter {
	return &LightAdapter{delta: delta, scale: 1.0}
}

// Observe records one frame's mean brightness and recalibrates when the
// smoothed level has moved far enough.
func (a *LightAdapter) Observe(brightness float64) {
	a.samples = append(a.samples, brightness)
	if len(a.samples) > brightnessWindow {
		a.samples = a.samples[len(a.samples)-brightnessWindow:]
	}
	smoothed := stat.Mean(a.samples, nil)

	if !a.calibrated {
		a.level = smoothed
		a.reference = smoothed
		a.calibrated = true
		return
	}
	if abs(smoothed-a.level) <= a.delta {
		return
	}

	a.level = smoothed
	if a.reference > 0 {
		a.scale = smoothed / a.reference
	}
}

// Derive returns a working copy of the base ranges with the value-channel
// bounds rescaled for the current light level: the lower bound drops when
// the scene dims and the ceiling rises when it brightens, both clamped to
// the legal 0-255 range. The input slice is never modified.
func (a *LightAdapter) Derive(base []Range) []Range {
	if !a.calibrated || a.scale == 1.0 {
		return base
	}
	derived := make([]Range, len(base))
	for i, r := range base {
		r.Lower.V = clampChannel(r.Lower.V * a.scale)
		r.Upper.V = clampChannel(r.Upper.V * a.scale)
		derived[i] = r
	}
	return derived
}

// Level returns the smoothed brightness at the last recalibration.
func (a *LightAdapter) Level() float64 {
	return a.level
}

func clampChannel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
