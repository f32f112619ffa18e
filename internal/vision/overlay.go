package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	overlayGreen = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	overlayBlue  = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	overlayRed   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// DrawOverlay annotates img with the result's outlines, labels and pose
// text. markerNames optionally maps fiducial identities to waypoint names.
func DrawOverlay(img *gocv.Mat, res Result, markerNames map[int]string) {
	switch res.Mode {
	case ModeFiducial:
		for _, item := range res.Items {
			drawMarker(img, item, markerNames)
		}
	case ModeObject:
		for _, item := range res.Items {
			gocv.Rectangle(img, item.Box, overlayBlue, 1)
			label := fmt.Sprintf("%s %.2f", item.Label, item.Confidence)
			gocv.PutText(img, label, textAnchor(item.Box), gocv.FontHersheySimplex, 0.5, overlayBlue, 1)
		}
	case ModeColor, ModeBlock:
		for _, item := range res.Items {
			gocv.Rectangle(img, item.Box, overlayRed, 1)
			gocv.PutText(img, item.Label, textAnchor(item.Box), gocv.FontHersheySimplex, 0.5, overlayRed, 1)
		}
	}
}

func drawMarker(img *gocv.Mat, item Item, markerNames map[int]string) {
	for i := 0; i < len(item.Corners); i++ {
		p1 := item.Corners[i]
		p2 := item.Corners[(i+1)%len(item.Corners)]
		gocv.Line(img, p1, p2, overlayGreen, 1)
	}

	label := fmt.Sprintf("ID %d", item.MarkerID)
	if name, ok := markerNames[item.MarkerID]; ok {
		label = name
	}
	gocv.PutText(img, label, textAnchor(item.Box), gocv.FontHersheySimplex, 0.5, overlayGreen, 1)

	if item.Pose != nil {
		pose := fmt.Sprintf("x=%+.3fm z=%.3fm", item.Pose.X, item.Pose.Z)
		gocv.PutText(img, pose, image.Pt(item.Box.Min.X, item.Box.Max.Y+15), gocv.FontHersheySimplex, 0.5, overlayGreen, 1)
	}
}

func textAnchor(box image.Rectangle) image.Point {
	y := box.Min.Y - 5
	if y < 10 {
		y = box.Min.Y + 15
	}
	return image.Pt(box.Min.X, y)
}
