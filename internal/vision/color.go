package vision

import (
	"fmt"
	"sort"
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/camera"
)

const colorMinArea = 300.0 // contours below this are noise

// ColorDetector thresholds the frame in HSV against configured color ranges
// and returns the largest contiguous regions per color. It carries no
// identity beyond "matches configured color".
type ColorDetector struct {
	targets map[string][]HSVRange
}

func NewColorDetector(targets map[string][]HSVRange) *ColorDetector {
	return &ColorDetector{targets: targets}
}

func (d *ColorDetector) Name() string { return string(ModeColor) }

func (d *ColorDetector) Warmup() error {
	if len(d.targets) == 0 {
		return fmt.Errorf("no color targets configured")
	}
	return nil
}

func (d *ColorDetector) Infer(frame *camera.Frame) (Result, error) {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame.Mat, &hsv, gocv.ColorBGRToHSV)

	var items []Item
	for name, ranges := range d.targets {
		mask := maskForRanges(hsv, ranges)

		contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)

		type region struct {
			box  gocv.PointVector
			area float64
		}
		var regions []region
		for i := 0; i < contours.Size(); i++ {
			contour := contours.At(i)
			area := gocv.ContourArea(contour)
			if area < colorMinArea {
				continue
			}
			regions = append(regions, region{box: contour, area: area})
		}
		sort.Slice(regions, func(i, j int) bool { return regions[i].area > regions[j].area })
		if len(regions) > 3 {
			regions = regions[:3]
		}

		for _, r := range regions {
			items = append(items, Item{
				Label:      name,
				Confidence: 1,
				Box:        gocv.BoundingRect(r.box),
				MarkerID:   -1,
			})
		}

		contours.Close()
		mask.Close()
	}

	return Result{
		Mode:     ModeColor,
		Items:    items,
		At:       time.Now(),
		FrameSeq: frame.Seq,
		Debug:    map[string]string{"targets": fmt.Sprintf("%d", len(d.targets))},
	}, nil
}

func (d *ColorDetector) Close() error { return nil }

// maskForRanges builds the union mask of all HSV intervals. The caller owns
// the returned Mat.
func maskForRanges(hsv gocv.Mat, ranges []HSVRange) gocv.Mat {
	mask := gocv.Zeros(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)

	for _, r := range ranges {
		m := gocv.NewMat()
		gocv.InRangeWithScalar(hsv,
			gocv.NewScalar(r.LoH, r.LoS, r.LoV, 0),
			gocv.NewScalar(r.HiH, r.HiS, r.HiV, 0),
			&m)
		gocv.BitwiseOr(mask, m, &mask)
		m.Close()
	}

	return mask
}
