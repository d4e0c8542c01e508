package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/rghosal/handlight/internal/video"
)

// Motion detection constants.
const (
	// GaussianBlurSize is the kernel size used to smooth frames before
	// differencing; it suppresses sensor noise that would otherwise read
	// as motion.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel luma delta above which a pixel counts
	// as changed.
	DiffThreshold = 25
)

// MotionDetector detects motion between consecutive frames by blurring and
// differencing their luma planes. The pipeline uses it to drop the camera
// to an idle frame rate when the scene is still.
type MotionDetector struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionDetector creates a MotionDetector with the given threshold: the
// percentage of pixels that must change for motion to register.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares the frame's luma plane against the previous one.
// Returns whether motion was detected and the percentage of pixels that
// changed. The first frame establishes the baseline and reports no motion,
// as does any frame whose dimensions differ from the baseline.
func (m *MotionDetector) Detect(frame *video.Frame) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || len(frame.Data) < frame.LumaSize() {
		return false, 0
	}

	luma, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC1, frame.Data[:frame.LumaSize()])
	if err != nil {
		return false, 0
	}
	defer luma.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(luma, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized || m.prevGray.Rows() != blurred.Rows() || m.prevGray.Cols() != blurred.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()

	blurred.CopyTo(&m.prevGray)

	changePercent := float64(changed) / float64(total) * 100.0
	return changePercent > m.threshold, changePercent
}

// Reset clears the baseline so the next frame starts fresh.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prevGray.Close()
	m.prevGray = gocv.NewMat()
	m.initialized = false
}

// Close releases the detector's resources.
func (m *MotionDetector) Close() {
	m.Reset()
}

// SetThreshold sets the motion detection threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}
