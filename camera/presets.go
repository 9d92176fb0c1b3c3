package camera

import "gocv.io/x/gocv"

// Preset is one exposure profile for a lighting environment. Values are
// in the device's native property units.
type Preset struct {
	Name       string
	Exposure   float64
	Brightness float64
	Contrast   float64
	Saturation float64
	Gain       float64
	Sharpness  float64
}

// Competition lighting presets, tuned on the match hardware.
var (
	PresetCompetition = Preset{
		Name: "competition", Exposure: -3, Brightness: 0.25, Contrast: 0.7,
		Saturation: 0.8, Gain: 0, Sharpness: 0.6,
	}
	PresetBright = Preset{
		Name: "bright", Exposure: -5, Brightness: 0.15, Contrast: 0.8,
		Saturation: 0.7, Gain: 0, Sharpness: 0.7,
	}
	PresetDim = Preset{
		Name: "dim", Exposure: -1, Brightness: 0.35, Contrast: 0.9,
		Saturation: 0.9, Gain: 1, Sharpness: 0.5,
	}
	PresetDark = Preset{
		Name: "dark", Exposure: 0, Brightness: 0.45, Contrast: 1.0,
		Saturation: 1.0, Gain: 2, Sharpness: 0.4,
	}
)

// PresetByName resolves a preset name, falling back to the competition
// profile.
func PresetByName(name string) Preset {
	switch name {
	case "bright":
		return PresetBright
	case "dim":
		return PresetDim
	case "dark":
		return PresetDark
	default:
		return PresetCompetition
	}
}

func (p Preset) apply(cap *gocv.VideoCapture) {
	cap.Set(gocv.VideoCaptureExposure, p.Exposure)
	cap.Set(gocv.VideoCaptureBrightness, p.Brightness)
	cap.Set(gocv.VideoCaptureContrast, p.Contrast)
	cap.Set(gocv.VideoCaptureSaturation, p.Saturation)
	cap.Set(gocv.VideoCaptureGain, p.Gain)
	cap.Set(gocv.VideoCaptureSharpness, p.Sharpness)
}
