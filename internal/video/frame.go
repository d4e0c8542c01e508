// Package video provides frame types, color-space normalization, and frame
// admission throttling for the handlight gesture pipeline.
package video

import "fmt"

// Layout identifies the pixel layout of a frame buffer.
type Layout string

const (
	// LayoutNV12 is a full-resolution luma plane followed by a half-resolution
	// chroma plane with U and V bytes interleaved (UVUV...).
	LayoutNV12 Layout = "nv12"
	// LayoutNV21 is the same as NV12 with the chroma interleave order
	// swapped (VUVU...).
	LayoutNV21 Layout = "nv21"
)

// Frame is a single captured video frame. The buffer is never mutated in
// place; conversions copy into a freshly allocated output buffer.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	Layout Layout
}

// LumaSize returns the number of bytes in the luma plane.
func (f *Frame) LumaSize() int {
	return f.Width * f.Height
}

// BufferSize returns the expected total buffer length for the frame's
// dimensions (luma plane plus 2x2-subsampled chroma pairs).
func (f *Frame) BufferSize() int {
	return f.Width * f.Height * 3 / 2
}

// Validate checks the frame dimensions and buffer length.
// Odd dimensions are a precondition violation and reported as an error.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if f.Width%2 != 0 || f.Height%2 != 0 {
		return fmt.Errorf("frame dimensions must be even, got %dx%d", f.Width, f.Height)
	}
	if len(f.Data) != f.BufferSize() {
		return fmt.Errorf("frame buffer length %d does not match %dx%d (want %d)",
			len(f.Data), f.Width, f.Height, f.BufferSize())
	}
	return nil
}
