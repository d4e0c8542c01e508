// Package config loads and validates the handlight configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rghosal/handlight/internal/actuator"
)

// Config holds every tunable of the gesture pipeline and its collaborators.
type Config struct {
	// CameraID selects the capture device.
	CameraID int `yaml:"camera_id"`
	// FrameSkip drops this many frames between classifications
	// (0 classifies every frame).
	FrameSkip int `yaml:"frame_skip"`
	// InputWidth and InputHeight are the classification input resolution.
	InputWidth  int `yaml:"input_width"`
	InputHeight int `yaml:"input_height"`

	// OpenThreshold and ClosedThreshold are the fingertip-spread bounds, in
	// normalized image units, separating open palm / ambiguous / closed fist.
	OpenThreshold   float64 `yaml:"open_threshold"`
	ClosedThreshold float64 `yaml:"closed_threshold"`
	// RotationThresholdDeg is how far the palm must rotate past the ratchet
	// baseline before a brightness step fires.
	RotationThresholdDeg float64 `yaml:"rotation_threshold_deg"`
	// BrightnessStep is the size of one brightness step.
	BrightnessStep int `yaml:"brightness_step"`
	// ToggleDebounce and BrightnessDebounce are the minimum gaps between
	// accepted on-toggles and brightness steps respectively.
	ToggleDebounce     time.Duration `yaml:"toggle_debounce"`
	BrightnessDebounce time.Duration `yaml:"brightness_debounce"`

	// MotionThreshold is the percentage of changed pixels that wakes the
	// camera out of its idle frame rate.
	MotionThreshold float64 `yaml:"motion_threshold"`

	// Hue holds the light bridge credentials. Leave empty to run the
	// pipeline without an actuator.
	Hue actuator.HueConfig `yaml:"hue"`

	// ServerAddr is the status server listen address.
	ServerAddr string `yaml:"server_addr"`
	// DBPath is the settings database location. Empty uses ~/.handlight/handlight.db.
	DBPath string `yaml:"db_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfigFilename is the default filename for settings.
const DefaultConfigFilename = "handlight.yaml"

var (
	errThresholdOrder = errors.New("closed_threshold must be below open_threshold")
)

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		CameraID:             0,
		FrameSkip:            2,
		InputWidth:           640,
		InputHeight:          480,
		OpenThreshold:        0.15,
		ClosedThreshold:      0.08,
		RotationThresholdDeg: 15,
		BrightnessStep:       10,
		ToggleDebounce:       2 * time.Second,
		BrightnessDebounce:   500 * time.Millisecond,
		MotionThreshold:      1.0,
		ServerAddr:           ":8080",
		LogLevel:             "info",
	}
}

// Load reads configuration from the provided path, layered over the
// defaults, and validates the result. A missing path loads pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the provided settings for consistency and fills gaps with
// defaults.
func Validate(cfg *Config) error {
	def := Default()

	if cfg.FrameSkip < 0 {
		cfg.FrameSkip = 0
	}
	if cfg.InputWidth <= 0 {
		cfg.InputWidth = def.InputWidth
	}
	if cfg.InputHeight <= 0 {
		cfg.InputHeight = def.InputHeight
	}
	if cfg.OpenThreshold <= 0 {
		cfg.OpenThreshold = def.OpenThreshold
	}
	if cfg.ClosedThreshold <= 0 {
		cfg.ClosedThreshold = def.ClosedThreshold
	}
	if cfg.ClosedThreshold >= cfg.OpenThreshold {
		return errThresholdOrder
	}
	if cfg.RotationThresholdDeg <= 0 {
		cfg.RotationThresholdDeg = def.RotationThresholdDeg
	}
	if cfg.BrightnessStep <= 0 || cfg.BrightnessStep > 100 {
		cfg.BrightnessStep = def.BrightnessStep
	}
	if cfg.ToggleDebounce <= 0 {
		cfg.ToggleDebounce = def.ToggleDebounce
	}
	if cfg.BrightnessDebounce <= 0 {
		cfg.BrightnessDebounce = def.BrightnessDebounce
	}
	if cfg.MotionThreshold <= 0 {
		cfg.MotionThreshold = def.MotionThreshold
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = def.ServerAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}

	return nil
}

// Setting keys understood by ApplyOverrides. These are the names persisted
// in the settings store.
const (
	KeyFrameSkip            = "frame_skip"
	KeyOpenThreshold        = "open_threshold"
	KeyClosedThreshold      = "closed_threshold"
	KeyRotationThresholdDeg = "rotation_threshold_deg"
	KeyBrightnessStep       = "brightness_step"
	KeyToggleDebounce       = "toggle_debounce"
	KeyBrightnessDebounce   = "brightness_debounce"
	KeyHueBridgeAddr        = "hue_bridge_addr"
	KeyHueUsername          = "hue_username"
	KeyHueLightID           = "hue_light_id"
)

// ApplyOverrides layers persisted settings over the configuration, then
// re-validates. Unknown keys are ignored; a malformed value is an error so a
// corrupt store never silently mistunes the pipeline.
func ApplyOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		var err error
		switch key {
		case KeyFrameSkip:
			cfg.FrameSkip, err = strconv.Atoi(value)
		case KeyOpenThreshold:
			cfg.OpenThreshold, err = strconv.ParseFloat(value, 64)
		case KeyClosedThreshold:
			cfg.ClosedThreshold, err = strconv.ParseFloat(value, 64)
		case KeyRotationThresholdDeg:
			cfg.RotationThresholdDeg, err = strconv.ParseFloat(value, 64)
		case KeyBrightnessStep:
			cfg.BrightnessStep, err = strconv.Atoi(value)
		case KeyToggleDebounce:
			cfg.ToggleDebounce, err = time.ParseDuration(value)
		case KeyBrightnessDebounce:
			cfg.BrightnessDebounce, err = time.ParseDuration(value)
		case KeyHueBridgeAddr:
			cfg.Hue.BridgeAddr = value
		case KeyHueUsername:
			cfg.Hue.Username = value
		case KeyHueLightID:
			cfg.Hue.LightID = value
		}
		if err != nil {
			return fmt.Errorf("invalid stored setting %s=%q: %w", key, value, err)
		}
	}

	return Validate(cfg)
}
