// Package gesture turns hand landmark geometry into a small gesture
// vocabulary and drives the debounced state machine that converts noisy
// per-frame observations into discrete light-control events.
package gesture

import (
	"math"

	"github.com/rghosal/handlight/internal/detector"
)

// Gesture is a discrete hand pose label.
type Gesture string

const (
	// GestureNone means no strong pose signal: either no hand, or a hand in
	// the ambiguous band between open and closed.
	GestureNone Gesture = "none"
	// GestureOpenPalm is an open hand with fingers extended.
	GestureOpenPalm Gesture = "open_palm"
	// GestureClosedFist is a closed hand with fingers curled in.
	GestureClosedFist Gesture = "closed_fist"
)

// HandState is the classifier's per-tick output. It is a value with no
// persistent identity, recomputed on every classification tick.
type HandState struct {
	Gesture       Gesture
	RotationAngle float64 // degrees from vertical, clockwise positive, in [-90, 90]
	Confidence    float64
	HandDetected  bool
}

// Default classification thresholds in normalized image units.
const (
	// DefaultOpenThreshold is the mean fingertip spread above which a hand
	// reads as an open palm.
	DefaultOpenThreshold = 0.15
	// DefaultClosedThreshold is the mean fingertip spread below which a hand
	// reads as a closed fist.
	DefaultClosedThreshold = 0.08
)

// Classifier maps a hand landmark set to a HandState using fingertip-to-palm
// distance thresholds. It is stateless; Classify is a pure computation over
// the provided geometry and safe for concurrent use.
type Classifier struct {
	OpenThreshold   float64
	ClosedThreshold float64
}

// NewClassifier creates a Classifier with the given thresholds. Non-positive
// values fall back to the defaults. ClosedThreshold must stay below
// OpenThreshold; callers validate that at configuration time.
func NewClassifier(openThreshold, closedThreshold float64) *Classifier {
	if openThreshold <= 0 {
		openThreshold = DefaultOpenThreshold
	}
	if closedThreshold <= 0 {
		closedThreshold = DefaultClosedThreshold
	}
	return &Classifier{
		OpenThreshold:   openThreshold,
		ClosedThreshold: closedThreshold,
	}
}

// Classify computes the gesture label, palm rotation, and presence flag for
// a landmark set. A nil set yields the zero HandState (no hand detected).
// A present hand always reports HandDetected=true, even when the pose falls
// in the ambiguous band and the gesture reads as None.
func (c *Classifier) Classify(lm *detector.HandLandmarks) HandState {
	if lm == nil {
		return HandState{Gesture: GestureNone}
	}

	state := HandState{
		Gesture:       GestureNone,
		RotationAngle: rotationAngle(lm),
		Confidence:    lm.Score,
		HandDetected:  true,
	}

	spread := avgFingertipSpread(lm)
	switch {
	case spread > c.OpenThreshold:
		state.Gesture = GestureOpenPalm
	case spread < c.ClosedThreshold:
		state.Gesture = GestureClosedFist
	}
	// Equality with either threshold stays in the ambiguous None band.

	return state
}

// avgFingertipSpread returns the mean Euclidean distance, in normalized
// coordinates, from the palm reference point to the five fingertips.
func avgFingertipSpread(lm *detector.HandLandmarks) float64 {
	palm := lm.Points[detector.PalmReference]

	var sum float64
	for _, tip := range detector.FingertipIndices {
		dx := lm.Points[tip].X - palm.X
		dy := lm.Points[tip].Y - palm.Y
		sum += math.Sqrt(dx*dx + dy*dy)
	}

	return sum / float64(len(detector.FingertipIndices))
}

// rotationAngle measures the angle of the wrist-to-middle-fingertip vector
// from vertical. Image y grows downward, so atan2(dx, -dy) reads 0 degrees
// for an upright hand and positive for clockwise rotation. The result is
// clamped to [-90, 90].
func rotationAngle(lm *detector.HandLandmarks) float64 {
	wrist := lm.Points[detector.Wrist]
	tip := lm.Points[detector.MiddleTip]

	dx := tip.X - wrist.X
	dy := tip.Y - wrist.Y

	deg := math.Atan2(dx, -dy) * 180 / math.Pi
	return clampAngle(deg)
}

func clampAngle(deg float64) float64 {
	if deg > 90 {
		return 90
	}
	if deg < -90 {
		return -90
	}
	return deg
}
