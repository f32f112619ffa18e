package vision

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestRangesFor_MidSpectrumColor(t *testing.T) {
	// Pure green sits at 120 degrees, OpenCV hue 60: one clean interval.
	ranges := RangesFor(colorful.Color{R: 0, G: 1, B: 0})
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges, expected 1", len(ranges))
	}

	r := ranges[0]
	if r.LoH != 50 || r.HiH != 70 {
		t.Errorf("hue band [%v, %v], expected [50, 70]", r.LoH, r.HiH)
	}
	if r.LoS != satFloor || r.LoV != valFloor {
		t.Errorf("floors (%v, %v), expected (%v, %v)", r.LoS, r.LoV, satFloor, valFloor)
	}
	if r.HiS != 255 || r.HiV != 255 {
		t.Errorf("ceilings (%v, %v), expected (255, 255)", r.HiS, r.HiV)
	}
}

func TestRangesFor_RedWrapsAroundHueBoundary(t *testing.T) {
	// Pure red sits at hue 0: the band wraps and splits into two intervals.
	ranges := RangesFor(colorful.Color{R: 1, G: 0, B: 0})
	if len(ranges) != 2 {
		t.Fatalf("got %d ranges, expected 2 for a wrapping hue", len(ranges))
	}

	low, high := ranges[0], ranges[1]
	if low.LoH != 0 || low.HiH != 10 {
		t.Errorf("low band [%v, %v], expected [0, 10]", low.LoH, low.HiH)
	}
	if high.LoH != 170 || high.HiH != 180 {
		t.Errorf("high band [%v, %v], expected [170, 180]", high.LoH, high.HiH)
	}
}

func TestParseColorTargets_Valid(t *testing.T) {
	targets, err := ParseColorTargets("red=#ff0000,green=#00ff00,blue=#0000ff")
	if err != nil {
		t.Fatalf("ParseColorTargets failed: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("got %d targets, expected 3", len(targets))
	}
	if len(targets["red"]) != 2 {
		t.Errorf("red has %d ranges, expected 2 (hue wrap)", len(targets["red"]))
	}
	if len(targets["blue"]) != 1 {
		t.Errorf("blue has %d ranges, expected 1", len(targets["blue"]))
	}
}

func TestParseColorTargets_Invalid(t *testing.T) {
	tests := []string{
		"",                  // nothing configured
		"red",               // missing =
		"red=notacolor",     // bad hex
		"red=#ff0000,green", // malformed trailing entry
	}

	for _, spec := range tests {
		if _, err := ParseColorTargets(spec); err == nil {
			t.Errorf("ParseColorTargets(%q) succeeded, expected error", spec)
		}
	}
}
