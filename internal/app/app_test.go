package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rghosal/handlight/internal/actuator"
	"github.com/rghosal/handlight/internal/capture"
	"github.com/rghosal/handlight/internal/config"
	"github.com/rghosal/handlight/internal/detector"
	"github.com/rghosal/handlight/internal/gesture"
	"github.com/rghosal/handlight/internal/video"
)

// testSettings returns a config tuned for fast, deterministic tests.
func testSettings() *config.Config {
	cfg := config.Default()
	cfg.FrameSkip = 0
	cfg.OpenThreshold = 0.15
	cfg.ClosedThreshold = 0.08
	cfg.RotationThresholdDeg = 5
	cfg.BrightnessStep = 20
	cfg.ToggleDebounce = 200 * time.Millisecond
	cfg.BrightnessDebounce = 150 * time.Millisecond
	return &cfg
}

func testSession(t *testing.T) (*Session, *capture.MockCamera, *detector.MockDetector, *actuator.FakeActuator) {
	t.Helper()

	cam := capture.NewMockCamera([]*video.Frame{capture.SyntheticFrame(64, 48, 100)}, true)
	det := detector.NewMockDetector()
	fake := actuator.NewFakeActuator()

	s := New(Config{
		Settings: testSettings(),
		Camera:   cam,
		Detector: det,
		Light:    fake,
	})
	return s, cam, det, fake
}

// waitForCommands blocks until the fake actuator has recorded at least n
// commands. Dispatch runs on its own goroutine, so assertions on the
// actuator have to wait for it.
func waitForCommands(t *testing.T, fake *actuator.FakeActuator, n int) []actuator.Command {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(fake.Commands()) >= n
	}, time.Second, time.Millisecond, "expected %d dispatched commands", n)
	return fake.Commands()
}

// TestSession_GestureScenario runs the canonical session: no hand, palm on,
// rotate for brightness, fist off, palm back on. Each step uses a fixed
// timestamp so the debounce windows behave identically on every run.
func TestSession_GestureScenario(t *testing.T) {
	s, _, det, fake := testSession(t)
	frame := capture.SyntheticFrame(64, 48, 100)

	base := time.Now()
	step := 300 * time.Millisecond

	// No hand in view.
	det.SetHand(nil)
	s.classify(frame, base)
	snap := s.Snapshot()
	assert.False(t, snap.LightOn)
	assert.Equal(t, gesture.DefaultBrightness, snap.Brightness)
	assert.Empty(t, fake.Commands())

	// Open palm turns the light on.
	open := detector.OpenPalmLandmarks(0)
	det.SetHand(&open)
	s.classify(frame, base.Add(step))
	cmds := waitForCommands(t, fake, 1)
	assert.Equal(t, actuator.Command{Name: "power", On: true}, cmds[0])
	assert.True(t, s.Snapshot().LightOn)

	// Rotating the palm past the threshold steps brightness up, and the
	// dispatched level is the absolute value after the step.
	rotated := detector.OpenPalmLandmarks(8)
	det.SetHand(&rotated)
	s.classify(frame, base.Add(2*step))
	cmds = waitForCommands(t, fake, 2)
	assert.Equal(t, actuator.Command{Name: "brightness", Level: 70}, cmds[1])
	assert.Equal(t, 70, s.Snapshot().Brightness)

	// Closed fist turns the light off immediately.
	fist := detector.ClosedFistLandmarks()
	det.SetHand(&fist)
	s.classify(frame, base.Add(3*step))
	cmds = waitForCommands(t, fake, 3)
	assert.Equal(t, actuator.Command{Name: "power", On: false}, cmds[2])
	assert.False(t, s.Snapshot().LightOn)

	// Open palm again turns it back on; the brightness survived the off.
	det.SetHand(&open)
	s.classify(frame, base.Add(4*step))
	cmds = waitForCommands(t, fake, 4)
	assert.Equal(t, actuator.Command{Name: "power", On: true}, cmds[3])

	snap = s.Snapshot()
	assert.True(t, snap.LightOn)
	assert.Equal(t, 70, snap.Brightness)
}

// TestSession_DetectorErrorIsNoHand verifies a detector failure behaves like
// an empty frame: the tick completes, state is untouched, nothing dispatched.
func TestSession_DetectorErrorIsNoHand(t *testing.T) {
	s, _, det, fake := testSession(t)
	frame := capture.SyntheticFrame(64, 48, 100)
	base := time.Now()

	open := detector.OpenPalmLandmarks(0)
	det.SetHand(&open)
	s.classify(frame, base)
	waitForCommands(t, fake, 1)
	require.True(t, s.Snapshot().LightOn)

	det.SetError(errors.New("detector crashed"))
	s.classify(frame, base.Add(300*time.Millisecond))

	snap := s.Snapshot()
	assert.True(t, snap.LightOn, "detector error must not change light state")
	assert.Len(t, fake.Commands(), 1)
}

func TestSession_Listeners(t *testing.T) {
	s, _, det, _ := testSession(t)
	frame := capture.SyntheticFrame(64, 48, 100)

	var events []gesture.Event
	var snaps []Snapshot
	s.OnEvent(func(ev gesture.Event, snap Snapshot) {
		events = append(events, ev)
		snaps = append(snaps, snap)
	})

	open := detector.OpenPalmLandmarks(0)
	det.SetHand(&open)
	s.classify(frame, time.Now())

	require.Len(t, events, 1)
	assert.Equal(t, gesture.LightOn, events[0].Kind)
	assert.True(t, snaps[0].LightOn)
	assert.True(t, snaps[0].HandDetected)
	assert.Equal(t, s.ID(), snaps[0].SessionID)
}

func TestSession_SetTrackingEnabled(t *testing.T) {
	s, _, det, fake := testSession(t)
	frame := capture.SyntheticFrame(64, 48, 100)

	open := detector.OpenPalmLandmarks(0)
	det.SetHand(&open)
	s.classify(frame, time.Now())
	waitForCommands(t, fake, 1)
	require.True(t, s.Snapshot().LightOn)

	// Disabling tracking resets the gesture state entirely.
	s.SetTrackingEnabled(false)
	assert.False(t, s.TrackingEnabled())

	snap := s.Snapshot()
	assert.False(t, snap.LightOn)
	assert.Equal(t, gesture.DefaultBrightness, snap.Brightness)
	assert.Equal(t, gesture.GestureNone, snap.Gesture)

	s.SetTrackingEnabled(true)
	assert.True(t, s.TrackingEnabled())
}

func TestSession_StartStop(t *testing.T) {
	s, cam, det, _ := testSession(t)
	det.SetHand(nil)

	require.NoError(t, s.Start())
	assert.True(t, cam.IsOpen())
	assert.Equal(t, IdleFPS, cam.FPS())

	// Starting twice is a no-op.
	require.NoError(t, s.Start())

	// The frame loop keeps the latest normalized frame for the preview.
	require.Eventually(t, func() bool {
		return s.LatestFrame() != nil
	}, time.Second, 5*time.Millisecond)

	latest := s.LatestFrame()
	assert.Equal(t, video.LayoutNV21, latest.Layout)

	s.Stop()
	assert.False(t, cam.IsOpen())

	// Stopping twice is safe.
	s.Stop()
}

func TestSession_SetBrightness(t *testing.T) {
	s, _, _, _ := testSession(t)

	s.SetBrightness(80)
	assert.Equal(t, 80, s.Snapshot().Brightness)

	// Out-of-range values clamp rather than error.
	s.SetBrightness(500)
	assert.Equal(t, gesture.MaxBrightness, s.Snapshot().Brightness)
}
