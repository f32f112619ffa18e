package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, expected 8080", cfg.Port)
	}
	if cfg.InitialMode != "fiducial" {
		t.Errorf("InitialMode = %q, expected fiducial", cfg.InitialMode)
	}
	if cfg.MarkerSize != 0.045 {
		t.Errorf("MarkerSize = %v, expected 0.045", cfg.MarkerSize)
	}
	if cfg.Standoff != 0.4572 {
		t.Errorf("Standoff = %v, expected 0.4572", cfg.Standoff)
	}
	if cfg.GainX != 600 || cfg.GainZ != 800 {
		t.Errorf("gains (%v, %v), expected (600, 800)", cfg.GainX, cfg.GainZ)
	}
	if cfg.MaxSpeed != 350 || cfg.MinSpeed != 80 {
		t.Errorf("speed bounds (%v, %v), expected (350, 80)", cfg.MaxSpeed, cfg.MinSpeed)
	}
	if cfg.LossTimeout != time.Second {
		t.Errorf("LossTimeout = %v, expected 1s", cfg.LossTimeout)
	}
	if cfg.ControlPeriod != 50*time.Millisecond {
		t.Errorf("ControlPeriod = %v, expected 50ms", cfg.ControlPeriod)
	}
	if cfg.TargetMarkerID != -1 {
		t.Errorf("TargetMarkerID = %d, expected -1 (closest wins)", cfg.TargetMarkerID)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("INITIAL_MODE", "color")
	t.Setenv("STANDOFF_M", "0.6")
	t.Setenv("LOSS_TIMEOUT", "2s")
	t.Setenv("TARGET_MARKER_ID", "4")
	t.Setenv("CAMERA_CORRECTION", "false")

	cfg := Load()

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, expected 9000", cfg.Port)
	}
	if cfg.InitialMode != "color" {
		t.Errorf("InitialMode = %q, expected color", cfg.InitialMode)
	}
	if cfg.Standoff != 0.6 {
		t.Errorf("Standoff = %v, expected 0.6", cfg.Standoff)
	}
	if cfg.LossTimeout != 2*time.Second {
		t.Errorf("LossTimeout = %v, expected 2s", cfg.LossTimeout)
	}
	if cfg.TargetMarkerID != 4 {
		t.Errorf("TargetMarkerID = %d, expected 4", cfg.TargetMarkerID)
	}
	if cfg.ApplyCorrection {
		t.Error("ApplyCorrection = true, expected override to false")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("STANDOFF_M", "half a meter")
	t.Setenv("LOSS_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, expected default on invalid input", cfg.Port)
	}
	if cfg.Standoff != 0.4572 {
		t.Errorf("Standoff = %v, expected default on invalid input", cfg.Standoff)
	}
	if cfg.LossTimeout != time.Second {
		t.Errorf("LossTimeout = %v, expected default on invalid input", cfg.LossTimeout)
	}
}
