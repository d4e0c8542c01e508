package capture

import (
	"fmt"
	"sync"

	"github.com/rghosal/handlight/internal/video"
)

// MockCamera plays back pre-built frames for testing.
type MockCamera struct {
	frames  []*video.Frame
	index   int
	loop    bool
	mu      sync.Mutex
	running bool
	fps     int
}

// NewMockCamera creates a MockCamera over the given frame sequence.
func NewMockCamera(frames []*video.Frame, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

// SyntheticFrame fabricates a valid NV12 frame filled with a flat luma value,
// useful when a test only needs plumbing, not pixels.
func SyntheticFrame(w, h int, luma byte) *video.Frame {
	data := make([]byte, w*h*3/2)
	for i := 0; i < w*h; i++ {
		data[i] = luma
	}
	for i := w * h; i < len(data); i++ {
		data[i] = 128 // neutral chroma
	}
	return &video.Frame{Data: data, Width: w, Height: h, Layout: video.LayoutNV12}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*video.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if c.loop {
			c.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	// Copy the buffer so consumers can never see a shared frame mutate.
	src := c.frames[c.index]
	c.index++

	return &video.Frame{
		Data:   append([]byte(nil), src.Data...),
		Width:  src.Width,
		Height: src.Height,
		Layout: src.Layout,
	}, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetFrames replaces the frame sequence.
func (c *MockCamera) SetFrames(frames []*video.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
