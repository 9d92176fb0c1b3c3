package config

import (
	"encoding/json"
	"fmt"
	"os"

	"rescuecam/segment"
	"rescuecam/tracking"
)

// thresholdFile is the on-disk HSV schema: color name → list of
// lower/upper triples in OpenCV order [H, S, V].
type thresholdFile map[string][]struct {
	Lower [3]float64 `json:"lower"`
	Upper [3]float64 `json:"upper"`
}

// DefaultThresholds returns the canonical HSV ranges. Red wraps the hue
// origin and purple spans a hue boundary, so both carry two sub-ranges.
func DefaultThresholds() map[tracking.ColorClass][]segment.Range {
	return map[tracking.ColorClass][]segment.Range{
		tracking.ClassRed: {
			{Lower: segment.HSV{H: 0, S: 120, V: 70}, Upper: segment.HSV{H: 10, S: 255, V: 255}},
			{Lower: segment.HSV{H: 170, S: 120, V: 70}, Upper: segment.HSV{H: 180, S: 255, V: 255}},
		},
		tracking.ClassBlue: {
			{Lower: segment.HSV{H: 90, S: 100, V: 100}, Upper: segment.HSV{H: 130, S: 255, V: 255}},
		},
		tracking.ClassYellow: {
			{Lower: segment.HSV{H: 20, S: 100, V: 100}, Upper: segment.HSV{H: 30, S: 255, V: 255}},
		},
		tracking.ClassBlack: {
			{Lower: segment.HSV{H: 0, S: 0, V: 0}, Upper: segment.HSV{H: 180, S: 255, V: 40}},
		},
		tracking.ClassPurple: {
			{Lower: segment.HSV{H: 120, S: 100, V: 100}, Upper: segment.HSV{H: 140, S: 255, V: 255}},
			{Lower: segment.HSV{H: 140, S: 100, V: 100}, Upper: segment.HSV{H: 160, S: 255, V: 255}},
		},
	}
}

// LoadThresholds reads an HSV threshold file, overlaying configured
// colors onto the defaults. A missing file returns the defaults; an
// unknown color name is an error so a typo cannot silently disable a
// detector.
func LoadThresholds(path string) (map[tracking.ColorClass][]segment.Range, error) {
	ranges := DefaultThresholds()
	if path == "" {
		return ranges, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ranges, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read thresholds: %w", err)
	}

	var file thresholdFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse thresholds: %w", err)
	}

	for name, pairs := range file {
		class, err := tracking.ParseColorClass(name)
		if err != nil {
			return nil, fmt.Errorf("thresholds: %w", err)
		}
		var rs []segment.Range
		for _, p := range pairs {
			r := segment.Range{
				Lower: segment.HSV{H: p.Lower[0], S: p.Lower[1], V: p.Lower[2]},
				Upper: segment.HSV{H: p.Upper[0], S: p.Upper[1], V: p.Upper[2]},
			}
			if err := validateRange(name, r); err != nil {
				return nil, err
			}
			rs = append(rs, r)
		}
		if len(rs) > 0 {
			ranges[class] = rs
		}
	}
	return ranges, nil
}

func validateRange(name string, r segment.Range) error {
	check := func(field string, v, max float64) error {
		if v < 0 || v > max {
			return fmt.Errorf("thresholds: %s %s out of range: %v", name, field, v)
		}
		return nil
	}
	for _, c := range []struct {
		field string
		v     float64
		max   float64
	}{
		{"hue", r.Lower.H, 180}, {"hue", r.Upper.H, 180},
		{"saturation", r.Lower.S, 255}, {"saturation", r.Upper.S, 255},
		{"value", r.Lower.V, 255}, {"value", r.Upper.V, 255},
	} {
		if err := check(c.field, c.v, c.max); err != nil {
			return err
		}
	}
	return nil
}
