package vision

import (
	"fmt"
	"image"
	"time"

	"navbot/internal/camera"
)

// Mode selects which detector variant is active. Exactly one is active at a
// time system-wide.
type Mode string

const (
	ModeFiducial Mode = "fiducial"
	ModeObject   Mode = "object"
	ModeColor    Mode = "color"
	ModeBlock    Mode = "block"
)

// ParseMode validates a mode name coming from the control surface.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case ModeFiducial, ModeObject, ModeColor, ModeBlock:
		return Mode(name), nil
	}
	return "", fmt.Errorf("unknown detector mode %q", name)
}

// Pose is a metric 3D position in camera-relative coordinates: x right+,
// y down+, z forward+, in meters.
type Pose struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Item is a single detected thing. Fiducial items carry a marker identity,
// outline corners and a metric pose; the other variants leave those empty.
type Item struct {
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"-"`
	MarkerID   int             `json:"marker_id"`
	Corners    []image.Point   `json:"-"`
	Pose       *Pose           `json:"pose,omitempty"`
}

// Result is the output of one inference pass. Older results are discarded,
// never merged: the manager keeps exactly one current Result.
type Result struct {
	Mode     Mode              `json:"mode"`
	Items    []Item            `json:"items"`
	At       time.Time         `json:"at"`
	FrameSeq uint64            `json:"frame_seq"`
	Debug    map[string]string `json:"debug,omitempty"`
}

// Detector is the polymorphic contract shared by the four variants. Infer
// must be side-effect-free on the frame and return within an interactive
// frame budget.
type Detector interface {
	Name() string
	Warmup() error
	Infer(frame *camera.Frame) (Result, error)
	Close() error
}

// FrameSource is what the manager reads frames from.
type FrameSource interface {
	Latest() (*camera.Frame, bool)
}
