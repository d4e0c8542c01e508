package gesture

import "fmt"

// EventKind identifies the discrete control action carried by an Event.
type EventKind int

const (
	// NoAction means the tick produced no user-intentional action.
	NoAction EventKind = iota
	// LightOn turns the light on.
	LightOn
	// LightOff turns the light off.
	LightOff
	// BrightnessChange steps the brightness by the event's delta.
	BrightnessChange
)

// Event is the state machine's per-tick output: exactly one is produced for
// every HandState fed in, and it is consumed immediately by the dispatcher.
type Event struct {
	Kind EventKind
	// Delta is the signed brightness step. Set only for BrightnessChange.
	Delta int
}

// String implements fmt.Stringer for log and wire output.
func (k EventKind) String() string {
	switch k {
	case LightOn:
		return "light_on"
	case LightOff:
		return "light_off"
	case BrightnessChange:
		return "brightness_change"
	default:
		return "no_action"
	}
}

// String implements fmt.Stringer for log output.
func (e Event) String() string {
	if e.Kind == BrightnessChange {
		return fmt.Sprintf("brightness_change(%+d)", e.Delta)
	}
	return e.Kind.String()
}
