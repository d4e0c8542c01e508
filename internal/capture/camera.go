// Package capture provides camera frame acquisition for the handlight
// pipeline. The hardware implementation uses GoCV (OpenCV); frames are
// delivered in the wearable camera's planar NV12 layout.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/rghosal/handlight/internal/video"
)

// Default camera settings
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*video.Frame, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      int
}

// NewCamera creates a new Camera with the given device ID.
func NewCamera(deviceID int) Camera {
	return &cameraImpl{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open opens the camera for capturing frames.
// It sets the resolution to 640x480 for performance.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	// Set resolution for performance
	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera and converts it into the
// planar NV12 layout the pipeline consumes.
func (c *cameraImpl) ReadFrame() (*video.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.capture.Read(&mat); !ok {
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		return nil, errors.New("captured frame is empty")
	}

	return matToNV12(&mat)
}

// matToNV12 converts a BGR Mat into a planar NV12 frame. OpenCV produces
// I420 (separate quarter-size U and V planes); the chroma samples are then
// repacked into the interleaved pair layout.
func matToNV12(mat *gocv.Mat) (*video.Frame, error) {
	w := mat.Cols()
	h := mat.Rows()
	if w%2 != 0 || h%2 != 0 {
		return nil, fmt.Errorf("camera produced odd frame dimensions %dx%d", w, h)
	}

	yuv := gocv.NewMat()
	defer yuv.Close()
	gocv.CvtColor(*mat, &yuv, gocv.ColorBGRToYUVI420)

	i420 := yuv.ToBytes()

	lumaSize := w * h
	chromaSize := lumaSize / 4
	out := make([]byte, lumaSize*3/2)

	copy(out[:lumaSize], i420[:lumaSize])

	uPlane := i420[lumaSize : lumaSize+chromaSize]
	vPlane := i420[lumaSize+chromaSize : lumaSize+2*chromaSize]
	for k := 0; k < chromaSize; k++ {
		out[lumaSize+2*k] = uPlane[k]
		out[lumaSize+2*k+1] = vPlane[k]
	}

	return &video.Frame{
		Data:   out,
		Width:  w,
		Height: h,
		Layout: video.LayoutNV12,
	}, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
