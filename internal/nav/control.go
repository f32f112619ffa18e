package nav

import (
	"navbot/internal/config"
)

// ControlParams are the target geometry and gains of the proportional
// control law. Configuration only, never mutated at runtime.
type ControlParams struct {
	Standoff   float64 // target forward distance to the marker, meters
	LateralTol float64 // centering deadband, meters
	DepthTol   float64 // distance deadband, meters
	GainX      float64
	GainZ      float64
	MaxSpeed   float64 // mm/s
	MinSpeed   float64 // mm/s, floor to overcome static friction
}

func ParamsFromConfig(cfg *config.Config) ControlParams {
	return ControlParams{
		Standoff:   cfg.Standoff,
		LateralTol: cfg.LateralTol,
		DepthTol:   cfg.DepthTol,
		GainX:      cfg.GainX,
		GainZ:      cfg.GainZ,
		MaxSpeed:   cfg.MaxSpeed,
		MinSpeed:   cfg.MinSpeed,
	}
}

// Command converts the marker-relative errors (meters) into per-axis chassis
// velocities (mm/s). Each axis is independent: zero inside its deadband,
// proportional outside it, with the magnitude clamped to
// [MinSpeed, MaxSpeed]. Both-zero means the target geometry is satisfied.
func (p ControlParams) Command(lateralErr, depthErr float64) (vx, vy float64) {
	if abs(lateralErr) > p.LateralTol {
		vx = proportionalSpeed(lateralErr, p.GainX, p.MinSpeed, p.MaxSpeed)
	}
	if abs(depthErr) > p.DepthTol {
		vy = proportionalSpeed(depthErr, p.GainZ, p.MinSpeed, p.MaxSpeed)
	}
	return vx, vy
}

// proportionalSpeed converts a positional error (meters) to a speed (mm/s).
// Small nonzero commands snap up to minSpeed so the chassis actually moves.
func proportionalSpeed(errM, gain, minSpeed, maxSpeed float64) float64 {
	if abs(errM) < 1e-6 {
		return 0
	}

	raw := gain * errM * 1000
	direction := 1.0
	if raw < 0 {
		direction = -1
	}

	magnitude := abs(raw)
	if magnitude < minSpeed {
		magnitude = minSpeed
	}
	if magnitude > maxSpeed {
		magnitude = maxSpeed
	}
	return direction * magnitude
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
