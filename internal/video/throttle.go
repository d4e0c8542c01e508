package video

// Throttle admits every (skipCount+1)-th frame into the gesture pipeline,
// decoupling classification cost from the camera frame rate. A skipCount of
// zero admits every frame.
//
// Throttle is not safe for concurrent use; the pipeline calls it from a
// single goroutine.
type Throttle struct {
	skipCount int
	counter   int
}

// NewThrottle creates a Throttle with the given skip count. Negative values
// are treated as zero.
func NewThrottle(skipCount int) *Throttle {
	if skipCount < 0 {
		skipCount = 0
	}
	return &Throttle{skipCount: skipCount}
}

// Admit increments the frame counter and reports whether the current frame
// should be processed. The counter resets to zero on every admitted frame.
func (t *Throttle) Admit() bool {
	t.counter++
	if t.counter > t.skipCount {
		t.counter = 0
		return true
	}
	return false
}

// Reset zeroes the frame counter. The pipeline resets the throttle whenever
// gesture processing is toggled off, so re-enabling starts a fresh phase.
func (t *Throttle) Reset() {
	t.counter = 0
}

// SkipCount returns the configured skip count.
func (t *Throttle) SkipCount() int {
	return t.skipCount
}
