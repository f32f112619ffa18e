package calibration

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCalibration(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calibration.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write calibration file: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeCalibration(t, `{
		"fx": 620.5, "fy": 618.2, "cx": 320.1, "cy": 241.7,
		"distortion": [0.12, -0.25, 0.001, -0.002, 0.08]
	}`)

	in, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if in.Fx != 620.5 || in.Fy != 618.2 {
		t.Errorf("focal lengths (%v, %v), expected (620.5, 618.2)", in.Fx, in.Fy)
	}
	if in.Cx != 320.1 || in.Cy != 241.7 {
		t.Errorf("principal point (%v, %v), expected (320.1, 241.7)", in.Cx, in.Cy)
	}
	if len(in.Distortion) != 5 {
		t.Errorf("got %d distortion coefficients, expected 5", len(in.Distortion))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeCalibration(t, `{"fx": `)
	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded on malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	valid := Intrinsics{Fx: 600, Fy: 600, Cx: 320, Cy: 240, Distortion: []float64{0.1}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate rejected valid intrinsics: %v", err)
	}

	tests := []struct {
		name string
		in   Intrinsics
	}{
		{"zero focal length", Intrinsics{Fy: 600, Cx: 320, Cy: 240, Distortion: []float64{0.1}}},
		{"negative focal length", Intrinsics{Fx: -600, Fy: 600, Cx: 320, Cy: 240, Distortion: []float64{0.1}}},
		{"zero principal point", Intrinsics{Fx: 600, Fy: 600, Cy: 240, Distortion: []float64{0.1}}},
		{"no distortion", Intrinsics{Fx: 600, Fy: 600, Cx: 320, Cy: 240}},
	}

	for _, tt := range tests {
		if err := tt.in.Validate(); err == nil {
			t.Errorf("%s: Validate accepted invalid intrinsics", tt.name)
		}
	}
}
