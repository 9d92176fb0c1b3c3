// Package config loads the strategy, HSV threshold, and exposure preset
// files. All fields are optional in the JSON: anything omitted falls back
// to the documented competition defaults, so a partial or missing file
// never blocks startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"

	"rescuecam/priority"
	"rescuecam/tracking"
)

// maxFileSize bounds config reads for safety (1MB).
const maxFileSize = 1 << 20

// Strategy is the on-disk game strategy schema. Pointer fields
// distinguish "omitted" from zero values.
type Strategy struct {
	TeamColor      *string        `json:"team_color,omitempty"`
	BallPriorities map[string]int `json:"ball_priorities,omitempty"`

	HazardRules *HazardRules  `json:"yellow_rules,omitempty"`
	Vision      *VisionParams `json:"vision_params,omitempty"`
	Serial      *SerialParams `json:"serial,omitempty"`
	Overlay     *OverlayStyle `json:"overlay,omitempty"`
}

// HazardRules configures hazard (yellow) handling.
type HazardRules struct {
	CannotHoldOther *bool `json:"cannot_hold_other,omitempty"`
	MaxTransfer     *int  `json:"max_transfer,omitempty"`
}

// VisionParams configures the camera and the object size gate.
type VisionParams struct {
	CameraID      *int `json:"camera_id,omitempty"`
	ImageWidth    *int `json:"image_width,omitempty"`
	ImageHeight   *int `json:"image_height,omitempty"`
	MinBallRadius *int `json:"min_ball_radius,omitempty"`
	MaxBallRadius *int `json:"max_ball_radius,omitempty"`

	AdaptiveLighting *bool    `json:"adaptive_lighting,omitempty"`
	LightingDelta    *float64 `json:"lighting_delta,omitempty"`
}

// SerialParams configures the controller link.
type SerialParams struct {
	Port *string `json:"port,omitempty"`
	Baud *int    `json:"baud,omitempty"`
}

// OverlayStyle carries the annotation palette as hex color strings.
type OverlayStyle struct {
	Palette map[string]string `json:"palette,omitempty"`
}

// Defaults (the canonical competition configuration).
const (
	defaultTeam        = "red"
	defaultCameraID    = 0
	defaultImageWidth  = 640
	defaultImageHeight = 480
	defaultMinRadius   = 10
	defaultMaxRadius   = 100
	defaultLightDelta  = 30.0
	defaultSerialPort  = "/dev/ttyUSB0"
	defaultSerialBaud  = 115200
	defaultMaxTransfer = 4
)

// Load reads a strategy file. A missing file returns the defaults.
func Load(path string) (*Strategy, error) {
	cfg := &Strategy{}
	if path == "" {
		return cfg, nil
	}
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes", info.Size())
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects values no default can repair.
func (c *Strategy) Validate() error {
	if c.TeamColor != nil {
		if *c.TeamColor != "red" && *c.TeamColor != "blue" {
			return fmt.Errorf("team_color must be red or blue, got %q", *c.TeamColor)
		}
	}
	if c.Vision != nil {
		if c.Vision.CameraID != nil && (*c.Vision.CameraID < 0 || *c.Vision.CameraID > 10) {
			return fmt.Errorf("camera_id out of range: %d", *c.Vision.CameraID)
		}
		if c.Vision.MinBallRadius != nil && c.Vision.MaxBallRadius != nil &&
			*c.Vision.MinBallRadius >= *c.Vision.MaxBallRadius {
			return fmt.Errorf("min_ball_radius %d must be below max_ball_radius %d",
				*c.Vision.MinBallRadius, *c.Vision.MaxBallRadius)
		}
	}
	if c.Overlay != nil {
		for name, hex := range c.Overlay.Palette {
			if _, err := colorful.Hex(hex); err != nil {
				return fmt.Errorf("palette color %q: %w", name, err)
			}
		}
	}
	return nil
}

// Team returns the configured team class.
func (c *Strategy) Team() tracking.ColorClass {
	name := defaultTeam
	if c.TeamColor != nil {
		name = *c.TeamColor
	}
	class, err := tracking.ParseColorClass(name)
	if err != nil {
		return tracking.ClassRed
	}
	return class
}

// Ruleset builds the read-only competition ruleset from the strategy,
// filling every missing field with the canonical defaults.
func (c *Strategy) Ruleset() priority.Ruleset {
	rules := priority.DefaultRuleset(c.Team())

	if len(c.BallPriorities) > 0 {
		if v, ok := c.BallPriorities["team"]; ok {
			rules.PriorityTable[rules.TeamColor] = v
		}
		if v, ok := c.BallPriorities["black"]; ok {
			rules.PriorityTable[tracking.ClassBlack] = v
		}
		if v, ok := c.BallPriorities["yellow"]; ok {
			rules.PriorityTable[tracking.ClassYellow] = v
		}
	}
	if c.HazardRules != nil {
		if c.HazardRules.CannotHoldOther != nil {
			rules.HazardIsSingleton = *c.HazardRules.CannotHoldOther
		}
		if c.HazardRules.MaxTransfer != nil {
			rules.MaxNormalPlusCore = *c.HazardRules.MaxTransfer
		}
	}
	return rules
}

// Accessors with defaults.

func (c *Strategy) CameraID() int {
	if c.Vision != nil && c.Vision.CameraID != nil {
		return *c.Vision.CameraID
	}
	return defaultCameraID
}

func (c *Strategy) ImageSize() (width, height int) {
	width, height = defaultImageWidth, defaultImageHeight
	if c.Vision != nil {
		if c.Vision.ImageWidth != nil {
			width = *c.Vision.ImageWidth
		}
		if c.Vision.ImageHeight != nil {
			height = *c.Vision.ImageHeight
		}
	}
	return width, height
}

func (c *Strategy) RadiusBounds() (min, max int) {
	min, max = defaultMinRadius, defaultMaxRadius
	if c.Vision != nil {
		if c.Vision.MinBallRadius != nil {
			min = *c.Vision.MinBallRadius
		}
		if c.Vision.MaxBallRadius != nil {
			max = *c.Vision.MaxBallRadius
		}
	}
	return min, max
}

func (c *Strategy) AdaptiveLighting() (enabled bool, delta float64) {
	delta = defaultLightDelta
	if c.Vision != nil {
		if c.Vision.AdaptiveLighting != nil {
			enabled = *c.Vision.AdaptiveLighting
		}
		if c.Vision.LightingDelta != nil {
			delta = *c.Vision.LightingDelta
		}
	}
	return enabled, delta
}

func (c *Strategy) SerialPort() (path string, baud int) {
	path, baud = defaultSerialPort, defaultSerialBaud
	if c.Serial != nil {
		if c.Serial.Port != nil {
			path = *c.Serial.Port
		}
		if c.Serial.Baud != nil {
			baud = *c.Serial.Baud
		}
	}
	return path, baud
}

// Palette resolves the overlay palette into parsed colors, merging the
// configured entries over the built-in defaults.
func (c *Strategy) Palette() map[string]colorful.Color {
	palette := map[string]colorful.Color{}
	for name, hex := range defaultPalette {
		col, _ := colorful.Hex(hex)
		palette[name] = col
	}
	if c.Overlay != nil {
		for name, hex := range c.Overlay.Palette {
			if col, err := colorful.Hex(hex); err == nil {
				palette[name] = col
			}
		}
	}
	return palette
}

// defaultPalette is the built-in annotation color scheme.
var defaultPalette = map[string]string{
	"red":    "#ff3030",
	"blue":   "#3060ff",
	"yellow": "#ffd000",
	"black":  "#202020",
	"purple": "#a030c0",
	"target": "#ff0000",
	"zone":   "#d02020",
	"status": "#20c020",
}
