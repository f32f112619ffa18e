package vision

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// HSVRange is an inclusive OpenCV-scaled HSV interval: hue in [0,180),
// saturation and value in [0,255].
type HSVRange struct {
	LoH, LoS, LoV float64
	HiH, HiS, HiV float64
}

const (
	hueWindow = 10  // half-width of the hue band around the target color
	satFloor  = 100 // below this the pixel is too washed out to attribute
	valFloor  = 70  // below this the pixel is too dark to attribute
)

// RangesFor converts a target color into one or two OpenCV HSV ranges. Hues
// near red wrap around the 180 boundary and split into two intervals, the
// same way hand-tuned red thresholds are usually written.
func RangesFor(c colorful.Color) []HSVRange {
	h, _, _ := c.Hsv()
	cvHue := h / 2 // OpenCV hue is 0..180

	lo := cvHue - hueWindow
	hi := cvHue + hueWindow

	switch {
	case lo < 0:
		return []HSVRange{
			{LoH: 0, LoS: satFloor, LoV: valFloor, HiH: hi, HiS: 255, HiV: 255},
			{LoH: 180 + lo, LoS: satFloor, LoV: valFloor, HiH: 180, HiS: 255, HiV: 255},
		}
	case hi > 180:
		return []HSVRange{
			{LoH: lo, LoS: satFloor, LoV: valFloor, HiH: 180, HiS: 255, HiV: 255},
			{LoH: 0, LoS: satFloor, LoV: valFloor, HiH: hi - 180, HiS: 255, HiV: 255},
		}
	default:
		return []HSVRange{
			{LoH: lo, LoS: satFloor, LoV: valFloor, HiH: hi, HiS: 255, HiV: 255},
		}
	}
}

// ParseColorTargets parses "name=#hex,name=#hex" configuration into named
// HSV ranges.
func ParseColorTargets(spec string) (map[string][]HSVRange, error) {
	targets := make(map[string][]HSVRange)

	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		name, hex, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid color target %q, want name=#hex", pair)
		}

		c, err := colorful.Hex(strings.TrimSpace(hex))
		if err != nil {
			return nil, fmt.Errorf("invalid color %q for target %q: %w", hex, name, err)
		}

		targets[strings.TrimSpace(name)] = RangesFor(c)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no color targets configured")
	}
	return targets, nil
}
