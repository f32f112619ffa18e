package vision

import (
	"fmt"
	"image"
	"os"
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/camera"
)

// objectLabels is the fixed MobileNet SSD class set. Static configuration,
// not runtime-mutable.
var objectLabels = []string{
	"background", "aeroplane", "bicycle", "bird", "boat", "bottle", "bus",
	"car", "cat", "chair", "cow", "diningtable", "dog", "horse", "motorbike",
	"person", "pottedplant", "sheep", "sofa", "train", "tvmonitor",
}

// ObjectDetector runs a MobileNet SSD network over the frame and returns
// bounding boxes with class label and confidence.
type ObjectDetector struct {
	modelPath  string
	configPath string
	confidence float64
	warmed     bool
	net        gocv.Net
}

func NewObjectDetector(modelPath, configPath string, confidence float64) *ObjectDetector {
	return &ObjectDetector{
		modelPath:  modelPath,
		configPath: configPath,
		confidence: confidence,
	}
}

func (d *ObjectDetector) Name() string { return string(ModeObject) }

// Warmup loads the network. Model loading is the expensive part of switching
// to object mode, so it happens here rather than on the first frame.
func (d *ObjectDetector) Warmup() error {
	if d.warmed {
		return nil
	}

	if _, err := os.Stat(d.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", d.modelPath)
	}
	if _, err := os.Stat(d.configPath); os.IsNotExist(err) {
		return fmt.Errorf("model config file not found: %s", d.configPath)
	}

	net := gocv.ReadNet(d.modelPath, d.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load detection network from %s", d.modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return fmt.Errorf("failed to set network backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return fmt.Errorf("failed to set network target: %w", err)
	}

	d.net = net
	d.warmed = true
	return nil
}

func (d *ObjectDetector) Infer(frame *camera.Frame) (Result, error) {
	if !d.warmed {
		if err := d.Warmup(); err != nil {
			return Result{}, err
		}
	}

	// The network input is a fixed 300x300; downscaling here keeps inference
	// inside an interactive frame budget regardless of capture resolution.
	blob := gocv.BlobFromImage(frame.Mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	cols := float32(frame.Mat.Cols())
	rows := float32(frame.Mat.Rows())

	var items []Item
	detections := output.Reshape(1, output.Total()/7)
	defer detections.Close()

	for i := 0; i < detections.Rows(); i++ {
		confidence := float64(detections.GetFloatAt(i, 2))
		if confidence < d.confidence {
			continue
		}

		classID := int(detections.GetFloatAt(i, 1))
		x1 := int(detections.GetFloatAt(i, 3) * cols)
		y1 := int(detections.GetFloatAt(i, 4) * rows)
		x2 := int(detections.GetFloatAt(i, 5) * cols)
		y2 := int(detections.GetFloatAt(i, 6) * rows)

		items = append(items, Item{
			Label:      classLabel(classID),
			Confidence: confidence,
			Box:        image.Rect(x1, y1, x2, y2),
			MarkerID:   -1,
		})
	}

	return Result{
		Mode:     ModeObject,
		Items:    items,
		At:       time.Now(),
		FrameSeq: frame.Seq,
		Debug:    map[string]string{"count": fmt.Sprintf("%d", len(items))},
	}, nil
}

func (d *ObjectDetector) Close() error {
	if !d.warmed {
		return nil
	}
	d.warmed = false
	return d.net.Close()
}

func classLabel(classID int) string {
	if classID >= 0 && classID < len(objectLabels) {
		return objectLabels[classID]
	}
	return fmt.Sprintf("class_%d", classID)
}
