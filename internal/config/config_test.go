package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def, *cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
camera_id: 2
frame_skip: 4
open_threshold: 0.2
toggle_debounce: 300ms
hue:
  bridge_addr: 192.168.1.42
  username: testuser
  light_id: "3"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.CameraID)
	assert.Equal(t, 4, cfg.FrameSkip)
	assert.Equal(t, 0.2, cfg.OpenThreshold)
	assert.Equal(t, 300*time.Millisecond, cfg.ToggleDebounce)
	assert.True(t, cfg.Hue.Configured())

	// Untouched fields keep their defaults.
	assert.Equal(t, Default().ClosedThreshold, cfg.ClosedThreshold)
	assert.Equal(t, Default().ServerAddr, cfg.ServerAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_ThresholdOrder(t *testing.T) {
	cfg := Default()
	cfg.OpenThreshold = 0.08
	cfg.ClosedThreshold = 0.15

	assert.Error(t, Validate(&cfg))
}

func TestValidate_FillsGaps(t *testing.T) {
	cfg := Config{OpenThreshold: 0.3, ClosedThreshold: 0.1}
	require.NoError(t, Validate(&cfg))

	def := Default()
	assert.Equal(t, def.BrightnessStep, cfg.BrightnessStep)
	assert.Equal(t, def.ToggleDebounce, cfg.ToggleDebounce)
	assert.Equal(t, def.ServerAddr, cfg.ServerAddr)
	assert.Equal(t, 0.3, cfg.OpenThreshold)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()

	err := ApplyOverrides(&cfg, map[string]string{
		KeyFrameSkip:          "5",
		KeyBrightnessStep:     "20",
		KeyToggleDebounce:     "250ms",
		KeyHueBridgeAddr:      "192.168.1.42",
		KeyHueUsername:        "testuser",
		KeyHueLightID:         "7",
		"some_future_setting": "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.FrameSkip)
	assert.Equal(t, 20, cfg.BrightnessStep)
	assert.Equal(t, 250*time.Millisecond, cfg.ToggleDebounce)
	assert.Equal(t, "7", cfg.Hue.LightID)
}

func TestApplyOverrides_MalformedValue(t *testing.T) {
	cfg := Default()

	err := ApplyOverrides(&cfg, map[string]string{KeyFrameSkip: "three"})
	assert.Error(t, err)
}

func TestApplyOverrides_Revalidates(t *testing.T) {
	cfg := Default()

	err := ApplyOverrides(&cfg, map[string]string{
		KeyOpenThreshold:   "0.05",
		KeyClosedThreshold: "0.10",
	})
	assert.Error(t, err, "stored thresholds in the wrong order must be rejected")
}
