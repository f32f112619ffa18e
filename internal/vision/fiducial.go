package vision

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/calibration"
	"navbot/internal/camera"
)

// FiducialDetector finds square fiducial markers (AprilTag 36h11 family) and
// estimates each marker's metric pose from the camera intrinsics and the
// configured physical marker size. Frames are expected to be undistorted
// already, so pose estimation runs with zero distortion coefficients.
type FiducialDetector struct {
	intr      *calibration.Intrinsics
	tagSize   float64
	warmed    bool
	detector  gocv.ArucoDetector
	camMtx    gocv.Mat
	zeroDist  gocv.Mat
	objectPts gocv.Point3fVector
}

func NewFiducialDetector(intr *calibration.Intrinsics, tagSize float64) *FiducialDetector {
	return &FiducialDetector{
		intr:    intr,
		tagSize: tagSize,
	}
}

func (d *FiducialDetector) Name() string { return string(ModeFiducial) }

func (d *FiducialDetector) Warmup() error {
	if d.warmed {
		return nil
	}
	if d.intr == nil {
		return fmt.Errorf("fiducial detector requires camera intrinsics for pose estimation")
	}
	if d.tagSize <= 0 {
		return fmt.Errorf("marker size must be positive, got %v", d.tagSize)
	}

	dict := gocv.GetPredefinedDictionary(gocv.ArucoDictAprilTag_36h11)
	params := gocv.NewArucoDetectorParameters()
	d.detector = gocv.NewArucoDetectorWithParams(dict, params)

	d.camMtx = d.intr.CameraMatrix()
	d.zeroDist = calibration.ZeroDistCoeffs()

	// Marker corners in the marker frame, matching the detector's corner
	// order: top-left, top-right, bottom-right, bottom-left.
	half := float32(d.tagSize / 2)
	d.objectPts = gocv.NewPoint3fVectorFromPoints([]gocv.Point3f{
		{X: -half, Y: half, Z: 0},
		{X: half, Y: half, Z: 0},
		{X: half, Y: -half, Z: 0},
		{X: -half, Y: -half, Z: 0},
	})

	d.warmed = true
	return nil
}

func (d *FiducialDetector) Infer(frame *camera.Frame) (Result, error) {
	if !d.warmed {
		if err := d.Warmup(); err != nil {
			return Result{}, err
		}
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame.Mat, &gray, gocv.ColorBGRToGray)

	corners, ids, _ := d.detector.DetectMarkers(gray)

	items := make([]Item, 0, len(ids))
	for i, id := range ids {
		if len(corners[i]) != 4 {
			continue
		}

		item := Item{
			Label:      fmt.Sprintf("marker %d", id),
			Confidence: 1,
			MarkerID:   id,
			Corners:    cornerPoints(corners[i]),
		}
		item.Box = boundingBox(item.Corners)

		if pose, ok := d.estimatePose(corners[i]); ok {
			item.Pose = pose
		}

		items = append(items, item)
	}

	return Result{
		Mode:     ModeFiducial,
		Items:    items,
		At:       time.Now(),
		FrameSeq: frame.Seq,
		Debug:    map[string]string{"count": fmt.Sprintf("%d", len(items))},
	}, nil
}

// estimatePose solves the marker's camera-relative translation with PnP over
// the four corner correspondences.
func (d *FiducialDetector) estimatePose(corners []gocv.Point2f) (*Pose, bool) {
	imagePts := gocv.NewPoint2fVectorFromPoints(corners)
	defer imagePts.Close()

	rvec := gocv.NewMat()
	defer rvec.Close()
	tvec := gocv.NewMat()
	defer tvec.Close()

	// flags 0 == iterative PnP
	if ok := gocv.SolvePnP(d.objectPts, imagePts, d.camMtx, d.zeroDist, &rvec, &tvec, false, 0); !ok {
		return nil, false
	}

	return &Pose{
		X: tvec.GetDoubleAt(0, 0),
		Y: tvec.GetDoubleAt(1, 0),
		Z: tvec.GetDoubleAt(2, 0),
	}, true
}

func (d *FiducialDetector) Close() error {
	if !d.warmed {
		return nil
	}
	d.warmed = false
	d.objectPts.Close()
	d.camMtx.Close()
	d.zeroDist.Close()
	return d.detector.Close()
}

func cornerPoints(corners []gocv.Point2f) []image.Point {
	pts := make([]image.Point, len(corners))
	for i, c := range corners {
		pts[i] = image.Pt(int(c.X), int(c.Y))
	}
	return pts
}

func boundingBox(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	box := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		if p.X < box.Min.X {
			box.Min.X = p.X
		}
		if p.Y < box.Min.Y {
			box.Min.Y = p.Y
		}
		if p.X > box.Max.X {
			box.Max.X = p.X
		}
		if p.Y > box.Max.Y {
			box.Max.Y = p.Y
		}
	}
	return box
}
