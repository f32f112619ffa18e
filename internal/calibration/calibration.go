package calibration

import (
	"encoding/json"
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// Intrinsics holds the pinhole camera parameters and distortion coefficients
// produced by offline calibration. Loaded once at startup and never mutated.
type Intrinsics struct {
	Fx         float64   `json:"fx"`
	Fy         float64   `json:"fy"`
	Cx         float64   `json:"cx"`
	Cy         float64   `json:"cy"`
	Distortion []float64 `json:"distortion"`
}

// Load reads and validates a calibration artifact. Any failure here is a
// startup error: navigating with uncalibrated geometry silently produces
// wrong distances.
func Load(path string) (*Intrinsics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}

	var in Intrinsics
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse calibration file %s: %w", path, err)
	}

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration in %s: %w", path, err)
	}

	return &in, nil
}

// Validate checks that the parameters describe a usable pinhole model.
func (in *Intrinsics) Validate() error {
	if in.Fx <= 0 || in.Fy <= 0 {
		return fmt.Errorf("focal lengths must be positive, got fx=%v fy=%v", in.Fx, in.Fy)
	}
	if in.Cx <= 0 || in.Cy <= 0 {
		return fmt.Errorf("principal point must be positive, got cx=%v cy=%v", in.Cx, in.Cy)
	}
	if len(in.Distortion) == 0 {
		return fmt.Errorf("distortion coefficients missing")
	}
	return nil
}

// CameraMatrix builds the 3x3 camera matrix as a gocv Mat. The caller owns
// the returned Mat.
func (in *Intrinsics) CameraMatrix() gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	m.SetDoubleAt(0, 0, in.Fx)
	m.SetDoubleAt(1, 1, in.Fy)
	m.SetDoubleAt(0, 2, in.Cx)
	m.SetDoubleAt(1, 2, in.Cy)
	m.SetDoubleAt(2, 2, 1)
	return m
}

// DistCoeffs builds the 1xN distortion coefficient Mat. The caller owns the
// returned Mat.
func (in *Intrinsics) DistCoeffs() gocv.Mat {
	m := gocv.NewMatWithSize(1, len(in.Distortion), gocv.MatTypeCV64F)
	for i, d := range in.Distortion {
		m.SetDoubleAt(0, i, d)
	}
	return m
}

// ZeroDistCoeffs builds a 1x5 zero Mat, used for frames that were already
// undistorted before detection.
func ZeroDistCoeffs() gocv.Mat {
	return gocv.NewMatWithSize(1, 5, gocv.MatTypeCV64F)
}
