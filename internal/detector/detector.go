package detector

import "github.com/rghosal/handlight/internal/video"

// Detector defines the interface for hand landmark detection implementations.
type Detector interface {
	// Detect analyzes a normalized video frame and returns the landmarks of
	// the most confident hand, or nil if no hand is present.
	Detect(frame *video.Frame) (*HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// InputWidth and InputHeight are the resolution frames are scaled to
	// before inference.
	InputWidth  int
	InputHeight int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
		InputWidth:    640,
		InputHeight:   480,
	}
}
