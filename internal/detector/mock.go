package detector

import (
	"math"

	"github.com/rghosal/handlight/internal/video"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hand *HandLandmarks
	err  error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHand sets the hand that will be returned by Detect. A nil hand
// simulates no detection.
func (m *MockDetector) SetHand(hand *HandLandmarks) {
	m.hand = hand
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hand or error.
func (m *MockDetector) Detect(frame *video.Frame) (*HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hand, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerRayAngles are per-finger angular offsets, in degrees, from the hand's
// main axis. The fan keeps fabricated hands roughly anatomical while leaving
// every fingertip at exactly the requested distance from the palm reference.
var fingerRayAngles = map[int]float64{
	ThumbTip:  50,
	IndexTip:  20,
	MiddleTip: 0,
	RingTip:   -20,
	PinkyTip:  -40,
}

// PalmLandmarks fabricates a hand whose five fingertips all sit `spread`
// away from the palm reference point, with the wrist-to-middle-tip axis
// rotated `rotationDeg` degrees clockwise from vertical. The mean fingertip
// distance of the result equals `spread` and its palm rotation equals
// `rotationDeg`, both to within floating-point rounding; tests pinning a
// value to an exact threshold must measure the fabricated geometry rather
// than assume bit equality.
func PalmLandmarks(spread, rotationDeg float64) HandLandmarks {
	lm := HandLandmarks{Score: 0.95}

	wrist := Point{X: 0.5, Y: 0.8}
	lm.Points[Wrist] = wrist

	// Hand axis: upright reads 0 degrees, clockwise positive.
	axis := rayDirection(rotationDeg)

	// Palm reference (middle-finger MCP) a fixed distance up the axis.
	const palmOffset = 0.15
	palm := Point{X: wrist.X + palmOffset*axis.X, Y: wrist.Y + palmOffset*axis.Y}
	lm.Points[MiddleMCP] = palm

	// Remaining finger bases fan out around the palm reference.
	lm.Points[IndexMCP] = pointAlong(palm, rayDirection(rotationDeg+20), 0.03)
	lm.Points[RingMCP] = pointAlong(palm, rayDirection(rotationDeg-20), 0.03)
	lm.Points[PinkyMCP] = pointAlong(palm, rayDirection(rotationDeg-40), 0.05)
	lm.Points[ThumbCMC] = pointAlong(wrist, rayDirection(rotationDeg+60), 0.05)

	for tip, offset := range fingerRayAngles {
		dir := rayDirection(rotationDeg + offset)
		lm.Points[tip] = pointAlong(palm, dir, spread)

		// Intermediate joints along the same ray.
		lm.Points[tip-1] = pointAlong(palm, dir, spread*0.7) // DIP / thumb IP
		lm.Points[tip-2] = pointAlong(palm, dir, spread*0.4) // PIP / thumb MCP
	}

	return lm
}

// OpenPalmLandmarks fabricates an open hand (fingertips well clear of the
// palm) rotated the given number of degrees from vertical.
func OpenPalmLandmarks(rotationDeg float64) HandLandmarks {
	return PalmLandmarks(0.25, rotationDeg)
}

// ClosedFistLandmarks fabricates a closed fist: all fingertips curled in
// close to the palm reference point.
func ClosedFistLandmarks() HandLandmarks {
	return PalmLandmarks(0.05, 0)
}

// rayDirection converts a clockwise-from-vertical angle in degrees into a
// unit vector in image coordinates (y grows downward, so "up" is -y).
func rayDirection(deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: math.Sin(rad), Y: -math.Cos(rad)}
}

func pointAlong(origin, dir Point, dist float64) Point {
	return Point{X: origin.X + dist*dir.X, Y: origin.Y + dist*dir.Y}
}
