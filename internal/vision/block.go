package vision

import (
	"fmt"
	"image"
	"sort"
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/camera"
)

// BlockDetector is a tighter-tolerance variant of the color detector tuned
// for a single known target color and rectangular shape. Morphological
// cleanup plus a rectangularity fill check trade generality for a lower
// false-positive rate.
type BlockDetector struct {
	ranges  []HSVRange
	minArea float64
	minFill float64
}

func NewBlockDetector(ranges []HSVRange, minArea, minFill float64) *BlockDetector {
	return &BlockDetector{
		ranges:  ranges,
		minArea: minArea,
		minFill: minFill,
	}
}

func (d *BlockDetector) Name() string { return string(ModeBlock) }

func (d *BlockDetector) Warmup() error {
	if len(d.ranges) == 0 {
		return fmt.Errorf("no block color configured")
	}
	return nil
}

func (d *BlockDetector) Infer(frame *camera.Frame) (Result, error) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame.Mat, &hsv, gocv.ColorBGRToHSV)

	mask := maskForRanges(hsv, d.ranges)
	defer mask.Close()

	openKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer openKernel.Close()
	closeKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer closeKernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, openKernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, closeKernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var items []Item
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if area < d.minArea {
			continue
		}

		box := gocv.BoundingRect(contour)
		rectArea := float64(box.Dx() * box.Dy())
		if rectArea <= 0 {
			continue
		}
		fill := area / rectArea
		if fill < d.minFill {
			continue
		}

		// A block face approximates to at least four polygon corners.
		peri := gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, 0.04*peri, true)
		cornerCount := approx.Size()
		approx.Close()
		if cornerCount < 4 {
			continue
		}

		items = append(items, Item{
			Label:      "block",
			Confidence: fill,
			Box:        box,
			MarkerID:   -1,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Box.Dx()*items[i].Box.Dy() > items[j].Box.Dx()*items[j].Box.Dy()
	})
	if len(items) > 3 {
		items = items[:3]
	}

	return Result{
		Mode:     ModeBlock,
		Items:    items,
		At:       time.Now(),
		FrameSeq: frame.Seq,
		Debug:    map[string]string{"count": fmt.Sprintf("%d", len(items))},
	}, nil
}

func (d *BlockDetector) Close() error { return nil }
