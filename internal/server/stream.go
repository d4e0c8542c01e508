package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/rghosal/handlight/internal/video"
)

// FrameSource supplies the most recent normalized frame, or nil before the
// first one arrives.
type FrameSource interface {
	LatestFrame() *video.Frame
}

// StreamHandler serves an MJPEG preview of the pipeline's latest frame.
type StreamHandler struct {
	source FrameSource
}

// NewStreamHandler creates a new StreamHandler over the given frame source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame := h.source.LatestFrame()
		if frame == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		data, err := encodeJPEG(frame)
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		w.Write(data)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(66 * time.Millisecond) // ~15 FPS
	}
}

// encodeJPEG converts a planar YUV frame into a JPEG for the preview stream.
func encodeJPEG(frame *video.Frame) ([]byte, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	mat, err := gocv.NewMatFromBytes(frame.Height*3/2, frame.Width, gocv.MatTypeCV8UC1, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer mat.Close()

	code := gocv.ColorYUVToBGRNV21
	if frame.Layout == video.LayoutNV12 {
		code = gocv.ColorYUVToBGRNV12
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, code)

	buf, err := gocv.IMEncode(".jpg", bgr)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
