package camera

import (
	"testing"

	"gocv.io/x/gocv"

	"navbot/internal/config"
	"navbot/internal/logger"
)

func testSource(t *testing.T) *Source {
	t.Helper()
	cfg := &config.Config{
		CameraWidth:  640,
		CameraHeight: 480,
		LogDirectory: t.TempDir(),
	}
	return New(cfg, nil, logger.NewLogger(cfg))
}

func grayMat(value uint8) gocv.Mat {
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(float64(value), float64(value), float64(value), 0))
	return mat
}

func TestSource_LatestBeforeFirstFrame(t *testing.T) {
	s := testSource(t)
	defer s.Close()

	if _, ok := s.Latest(); ok {
		t.Fatal("Latest returned a frame before any capture")
	}
}

func TestSource_PublishReplacesSlot(t *testing.T) {
	s := testSource(t)
	defer s.Close()

	s.publish(grayMat(10))
	first, ok := s.Latest()
	if !ok {
		t.Fatal("Latest returned no frame after publish")
	}
	defer first.Close()

	s.publish(grayMat(20))
	second, ok := s.Latest()
	if !ok {
		t.Fatal("Latest returned no frame after second publish")
	}
	defer second.Close()

	if second.Seq != first.Seq+1 {
		t.Errorf("sequence went %d -> %d, expected +1", first.Seq, second.Seq)
	}
	if second.Width != 640 || second.Height != 480 {
		t.Errorf("frame size %dx%d, expected 640x480", second.Width, second.Height)
	}
}

func TestSource_LatestReturnsOwnedCopy(t *testing.T) {
	s := testSource(t)
	defer s.Close()

	s.publish(grayMat(10))

	frame, _ := s.Latest()
	// Mutating the returned copy must not touch the slot.
	frame.Mat.SetTo(gocv.NewScalar(200, 200, 200, 0))
	frame.Close()

	again, _ := s.Latest()
	defer again.Close()
	if v := again.Mat.GetUCharAt(0, 0); v != 10 {
		t.Errorf("slot pixel = %d after mutating a returned copy, expected 10", v)
	}
}

func TestSource_CloseWithoutOpen(t *testing.T) {
	s := testSource(t)
	// No capture loop was started; Close must still return promptly.
	s.Close()
}
