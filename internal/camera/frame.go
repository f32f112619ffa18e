package camera

import (
	"time"

	"gocv.io/x/gocv"
)

// Frame is a snapshot of the (optionally undistorted) camera image at capture
// time. Frames are never mutated after publication; the capture loop replaces
// the whole frame on every cycle. Seq increases monotonically so consumers
// can tell whether a frame changed since they last looked.
type Frame struct {
	Mat    gocv.Mat
	Width  int
	Height int
	Seq    uint64
	At     time.Time
}

// Close releases the pixel buffer. Every Frame returned by Source.Latest is
// an independent copy owned by the caller.
func (f *Frame) Close() {
	f.Mat.Close()
}
