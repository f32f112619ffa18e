package camera

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/calibration"
	"navbot/internal/config"
	"navbot/internal/logger"
)

// Source owns the physical camera. A background goroutine captures frames at
// device rate, undistorts them when correction is enabled, and publishes the
// most recent one to a single slot. Readers never block the capture loop and
// the capture loop never blocks on readers.
type Source struct {
	device  int
	width   int
	height  int
	fps     int
	correct bool
	logger  *logger.Logger

	cap *gocv.VideoCapture

	mapx   gocv.Mat
	mapy   gocv.Mat
	hasMap bool

	mu     sync.RWMutex
	frame  gocv.Mat
	valid  bool
	seq    uint64
	at     time.Time
	devErr error

	started bool
	stop    chan struct{}
	done    chan struct{}
}

// New prepares a Source and, when correction is requested, precomputes the
// undistortion maps from the calibration intrinsics.
func New(cfg *config.Config, intr *calibration.Intrinsics, log *logger.Logger) *Source {
	s := &Source{
		device:  cfg.CameraDevice,
		width:   cfg.CameraWidth,
		height:  cfg.CameraHeight,
		fps:     cfg.CameraFPS,
		correct: cfg.ApplyCorrection,
		logger:  log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if s.correct && intr != nil {
		s.buildUndistortMaps(intr)
	}

	return s
}

func (s *Source) buildUndistortMaps(intr *calibration.Intrinsics) {
	size := image.Pt(s.width, s.height)

	camMtx := intr.CameraMatrix()
	defer camMtx.Close()
	dist := intr.DistCoeffs()
	defer dist.Close()

	newMtx, _ := gocv.GetOptimalNewCameraMatrixWithParams(camMtx, dist, size, 0, size, false)
	defer newMtx.Close()

	r := gocv.NewMat()
	defer r.Close()

	s.mapx = gocv.NewMat()
	s.mapy = gocv.NewMat()
	// 5 == CV_32FC1 map type
	gocv.InitUndistortRectifyMap(camMtx, dist, r, newMtx, size, 5, s.mapx, s.mapy)
	s.hasMap = true
}

// Open opens the capture device and starts the capture goroutine.
func (s *Source) Open() error {
	cap, err := gocv.OpenVideoCapture(s.device)
	if err != nil {
		return fmt.Errorf("failed to open camera device %d: %w", s.device, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.height))
	cap.Set(gocv.VideoCaptureFPS, float64(s.fps))

	s.cap = cap
	s.started = true
	go s.captureLoop()

	s.logger.Info("Camera %d opened at %dx%d (correction=%v)", s.device, s.width, s.height, s.correct)
	return nil
}

// captureLoop is the only writer of the frame slot. A failed device read is
// retried once with a fresh capture handle; persistent failure is recorded
// and surfaced through Err while the loop keeps trying.
func (s *Source) captureLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		raw := gocv.NewMat()
		if ok := s.cap.Read(&raw); !ok {
			raw.Close()
			if !s.reconnect() {
				s.setErr(fmt.Errorf("camera device %d read failed", s.device))
				time.Sleep(100 * time.Millisecond)
			}
			continue
		}

		if raw.Empty() {
			raw.Close()
			continue
		}

		s.publish(s.process(raw))
	}
}

// process resizes to the configured resolution and applies undistortion.
// Correction failure degrades to the raw frame rather than dropping it.
func (s *Source) process(raw gocv.Mat) gocv.Mat {
	if raw.Cols() != s.width || raw.Rows() != s.height {
		resized := gocv.NewMat()
		gocv.Resize(raw, &resized, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationNearestNeighbor)
		raw.Close()
		raw = resized
	}

	if !s.correct || !s.hasMap {
		return raw
	}

	corrected := gocv.NewMat()
	gocv.Remap(raw, &corrected, &s.mapx, &s.mapy, gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	if corrected.Empty() {
		corrected.Close()
		s.logger.Warning("Undistortion produced an empty frame, publishing raw frame")
		return raw
	}
	raw.Close()
	return corrected
}

// publish installs mat as the current frame, taking ownership of it.
func (s *Source) publish(mat gocv.Mat) {
	s.mu.Lock()
	if s.valid {
		s.frame.Close()
	}
	s.frame = mat
	s.valid = true
	s.seq++
	s.at = time.Now()
	s.devErr = nil
	s.mu.Unlock()
}

// reconnect drops the current capture handle and tries to reopen the device
// once. Returns true when a working handle was obtained.
func (s *Source) reconnect() bool {
	s.logger.Warning("Camera read failed, attempting reconnect")
	if s.cap != nil {
		s.cap.Close()
	}

	cap, err := gocv.OpenVideoCapture(s.device)
	if err != nil {
		return false
	}

	probe := gocv.NewMat()
	defer probe.Close()
	if ok := cap.Read(&probe); !ok {
		cap.Close()
		return false
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.height))
	cap.Set(gocv.VideoCaptureFPS, float64(s.fps))
	s.cap = cap
	s.logger.Info("Camera reconnected")
	return true
}

func (s *Source) setErr(err error) {
	s.mu.Lock()
	s.devErr = err
	s.mu.Unlock()
}

// Latest returns an owned copy of the most recent frame, or false before the
// first capture or after a device failure invalidated the slot. It never
// waits for a new capture.
func (s *Source) Latest() (*Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.valid {
		return nil, false
	}

	return &Frame{
		Mat:    s.frame.Clone(),
		Width:  s.frame.Cols(),
		Height: s.frame.Rows(),
		Seq:    s.seq,
		At:     s.at,
	}, true
}

// Err reports the last device error, nil while capture is healthy.
func (s *Source) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devErr
}

// Close stops the capture loop and releases the device and all Mats.
func (s *Source) Close() {
	if s.started {
		close(s.stop)
		<-s.done
		s.started = false
	}

	if s.cap != nil {
		s.cap.Close()
		s.cap = nil
	}

	s.mu.Lock()
	if s.valid {
		s.frame.Close()
		s.valid = false
	}
	s.mu.Unlock()

	if s.hasMap {
		s.mapx.Close()
		s.mapy.Close()
		s.hasMap = false
	}

	s.logger.Info("Camera closed")
}
