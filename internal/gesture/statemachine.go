package gesture

import (
	"math"
	"time"
)

// Brightness bounds. The light never accepts 0; the lowest dim level is 1.
const (
	MinBrightness = 1
	MaxBrightness = 100
	// DefaultBrightness is the level tracked before any brightness gesture.
	DefaultBrightness = 50
)

// Default state machine tuning.
const (
	DefaultToggleDebounce     = 2 * time.Second
	DefaultBrightnessDebounce = 500 * time.Millisecond
	DefaultRotationThreshold  = 15.0 // degrees
	DefaultBrightnessStep     = 10
)

// MachineConfig tunes the state machine's debouncing and brightness ratchet.
type MachineConfig struct {
	// ToggleDebounce is the minimum elapsed time between two accepted
	// light-on transitions. The off transition is deliberately undebounced
	// so that closing a fist feels instant.
	ToggleDebounce time.Duration
	// BrightnessDebounce is the minimum elapsed time between two accepted
	// brightness steps.
	BrightnessDebounce time.Duration
	// RotationThreshold is how far, in degrees, the palm must rotate past
	// the ratchet baseline before a brightness step is consumed.
	RotationThreshold float64
	// BrightnessStep is the magnitude of one brightness step.
	BrightnessStep int
}

// DefaultMachineConfig returns a MachineConfig with the default tuning.
func DefaultMachineConfig() MachineConfig {
	return MachineConfig{
		ToggleDebounce:     DefaultToggleDebounce,
		BrightnessDebounce: DefaultBrightnessDebounce,
		RotationThreshold:  DefaultRotationThreshold,
		BrightnessStep:     DefaultBrightnessStep,
	}
}

// StateMachine debounces the per-frame gesture signal into discrete control
// events. An open palm toggles the light on (debounced); a closed fist turns
// it off immediately; rotating a held-open palm ratchets the brightness up
// or down relative to a self-resetting baseline angle.
//
// The machine is deliberately single-threaded: Process must be called by one
// gesture worker at a time. Its notion of on/off and brightness is optimistic
// local tracking, independent of actuator acknowledgment.
type StateMachine struct {
	cfg MachineConfig

	current       Gesture
	lastProcessed Gesture
	lastToggle    time.Time
	lastBright    time.Time
	baseAngle     float64
	lightOn       bool
	brightness    int
}

// NewStateMachine creates a StateMachine with the given tuning. Zero or
// negative config fields fall back to the defaults.
func NewStateMachine(cfg MachineConfig) *StateMachine {
	def := DefaultMachineConfig()
	if cfg.ToggleDebounce <= 0 {
		cfg.ToggleDebounce = def.ToggleDebounce
	}
	if cfg.BrightnessDebounce <= 0 {
		cfg.BrightnessDebounce = def.BrightnessDebounce
	}
	if cfg.RotationThreshold <= 0 {
		cfg.RotationThreshold = def.RotationThreshold
	}
	if cfg.BrightnessStep <= 0 {
		cfg.BrightnessStep = def.BrightnessStep
	}

	m := &StateMachine{cfg: cfg}
	m.Reset()
	return m
}

// Process consumes one classifier output and emits exactly one event.
//
// Transition order matters: the hand-lost reset runs first, then the
// debounced on toggle, then the undebounced off toggle, and finally the
// brightness ratchet for a palm held open while the light is tracked on.
func (m *StateMachine) Process(hs HandState, now time.Time) Event {
	if !hs.HandDetected {
		// Losing the hand resets the edge-detection memory only, so the next
		// appearance of the same pose can fire again. Everything else
		// (light state, brightness, timestamps) is untouched.
		if m.lastProcessed != GestureNone {
			m.lastProcessed = GestureNone
			m.current = GestureNone
		}
		return Event{Kind: NoAction}
	}

	switch hs.Gesture {
	case GestureOpenPalm:
		if m.lastProcessed != GestureOpenPalm && now.Sub(m.lastToggle) > m.cfg.ToggleDebounce {
			m.lightOn = true
			m.baseAngle = hs.RotationAngle
			m.lastToggle = now
			m.lastProcessed = GestureOpenPalm
			m.current = GestureOpenPalm
			return Event{Kind: LightOn}
		}

		if ev, ok := m.ratchetBrightness(hs.RotationAngle, now); ok {
			m.current = GestureOpenPalm
			return ev
		}

	case GestureClosedFist:
		if m.lastProcessed != GestureClosedFist {
			m.lightOn = false
			m.lastToggle = now
			m.lastProcessed = GestureClosedFist
			m.current = GestureClosedFist
			return Event{Kind: LightOff}
		}
	}

	m.current = hs.Gesture
	return Event{Kind: NoAction}
}

// ratchetBrightness applies one brightness step when a held-open palm has
// rotated past the baseline by more than the rotation threshold. The baseline
// re-anchors to the current angle each time a step is consumed, so the user
// can keep rotating beyond the device's angular range without losing control
// range. Returns ok=false when the guards do not hold.
func (m *StateMachine) ratchetBrightness(angle float64, now time.Time) (Event, bool) {
	if !m.lightOn {
		return Event{}, false
	}
	if now.Sub(m.lastBright) <= m.cfg.BrightnessDebounce {
		return Event{}, false
	}

	delta := angle - m.baseAngle
	if math.Abs(delta) <= m.cfg.RotationThreshold {
		return Event{}, false
	}

	step := m.cfg.BrightnessStep
	if delta < 0 {
		step = -step
	}

	next := clampBrightness(m.brightness + step)
	if next == m.brightness {
		// Already pinned at a bound; the baseline stays put so reversing the
		// rotation can still move the level.
		return Event{Kind: NoAction}, true
	}

	emitted := next - m.brightness
	m.brightness = next
	m.baseAngle = angle
	m.lastBright = now

	return Event{Kind: BrightnessChange, Delta: emitted}, true
}

// CurrentGesture returns the most recently observed gesture.
func (m *StateMachine) CurrentGesture() Gesture {
	return m.current
}

// Brightness returns the tracked brightness level in [1,100].
func (m *StateMachine) Brightness() int {
	return m.brightness
}

// LightOn reports whether the light is tracked as on.
func (m *StateMachine) LightOn() bool {
	return m.lightOn
}

// SetBrightness overrides the tracked brightness level, clamped to [1,100].
// Used to resync with actuator-reported state.
func (m *StateMachine) SetBrightness(level int) {
	m.brightness = clampBrightness(level)
}

// Reset restores every field to its initial default. Called when the stream
// stops or hand tracking is disabled. Resetting twice is the same as once.
func (m *StateMachine) Reset() {
	m.current = GestureNone
	m.lastProcessed = GestureNone
	m.lastToggle = time.Time{}
	m.lastBright = time.Time{}
	m.baseAngle = 0
	m.lightOn = false
	m.brightness = DefaultBrightness
}

func clampBrightness(v int) int {
	if v < MinBrightness {
		return MinBrightness
	}
	if v > MaxBrightness {
		return MaxBrightness
	}
	return v
}
