package nav

import (
	"testing"
)

func testParams() ControlParams {
	return ControlParams{
		Standoff:   0.4572,
		LateralTol: 0.02,
		DepthTol:   0.05,
		GainX:      600,
		GainZ:      800,
		MaxSpeed:   350,
		MinSpeed:   80,
	}
}

func TestCommand_Deadband(t *testing.T) {
	p := testParams()

	tests := []struct {
		name       string
		lateralErr float64
		depthErr   float64
	}{
		{"both zero", 0, 0},
		{"lateral inside tolerance", 0.01, 0},
		{"depth inside tolerance", 0, 0.04},
		{"both inside tolerance", -0.019, -0.049},
	}

	for _, tt := range tests {
		vx, vy := p.Command(tt.lateralErr, tt.depthErr)
		if vx != 0 || vy != 0 {
			t.Errorf("%s: Command(%v, %v) = (%v, %v), expected (0, 0)",
				tt.name, tt.lateralErr, tt.depthErr, vx, vy)
		}
	}
}

func TestCommand_ClampsToMaxSpeed(t *testing.T) {
	p := testParams()

	// 0.10 m lateral error at gain 600 is 60000 mm/s raw, far past the clamp.
	vx, _ := p.Command(0.10, 0)
	if vx != 350 {
		t.Errorf("Command(0.10, 0) vx = %v, expected 350", vx)
	}

	vx, _ = p.Command(-0.10, 0)
	if vx != -350 {
		t.Errorf("Command(-0.10, 0) vx = %v, expected -350", vx)
	}

	_, vy := p.Command(0, 0.25)
	if vy != 350 {
		t.Errorf("Command(0, 0.25) vy = %v, expected 350", vy)
	}
}

func TestCommand_MinSpeedFloor(t *testing.T) {
	// A deliberately small gain so a valid error lands below the floor.
	p := testParams()
	p.GainX = 1

	// raw = 1 * 0.05 * 1000 = 50 mm/s, below the 80 mm/s floor.
	vx, _ := p.Command(0.05, 0)
	if vx != 80 {
		t.Errorf("Command(0.05, 0) vx = %v, expected floor 80", vx)
	}

	vx, _ = p.Command(-0.05, 0)
	if vx != -80 {
		t.Errorf("Command(-0.05, 0) vx = %v, expected floor -80", vx)
	}
}

func TestCommand_IndependentAxes(t *testing.T) {
	p := testParams()

	// Marker at z = 0.5 m against a 0.4572 m standoff: the 0.0428 m depth
	// error sits inside the 0.05 m tolerance while a 0.10 m lateral error
	// keeps the strafe axis active.
	vx, vy := p.Command(0.10, 0.5-p.Standoff)
	if vx != 350 {
		t.Errorf("vx = %v, expected 350", vx)
	}
	if vy != 0 {
		t.Errorf("vy = %v, expected 0 inside depth tolerance", vy)
	}
}

func TestProportionalSpeed_ZeroError(t *testing.T) {
	if got := proportionalSpeed(0, 600, 80, 350); got != 0 {
		t.Errorf("proportionalSpeed(0, ...) = %v, expected 0", got)
	}
}

func TestProportionalSpeed_SignPreserved(t *testing.T) {
	tests := []struct {
		errM     float64
		expected float64
	}{
		{0.001, 350},   // raw 600, clamped down
		{-0.001, -350}, // clamp keeps the sign
		{0.0001, 80},   // raw 60, snaps up to the floor
		{-0.0001, -80},
	}

	for _, tt := range tests {
		got := proportionalSpeed(tt.errM, 600, 80, 350)
		if got != tt.expected {
			t.Errorf("proportionalSpeed(%v) = %v, expected %v", tt.errM, got, tt.expected)
		}
	}
}
