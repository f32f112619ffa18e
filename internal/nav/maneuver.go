package nav

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"navbot/internal/chassis"
)

// maneuverStep is one timed chassis motion of a waypoint maneuver.
type maneuverStep struct {
	vx    float64
	vy    float64
	omega float64
	dur   time.Duration
}

// maneuvers are the scripted motions bound to route waypoint names. Speeds
// are deliberately modest: these run open-loop, without camera feedback.
var maneuvers = map[string][]maneuverStep{
	"TURN_LEFT":  {{omega: -0.24, dur: time.Second}},
	"TURN_RIGHT": {{omega: 0.24, dur: time.Second}},
	"STRAFE_LEFT": {
		{vx: -40, dur: time.Second},
	},
	"STRAFE_RIGHT": {
		{vx: 40, dur: time.Second},
	},
	"BACKWARD_TURN_LEFT": {
		{vy: -40, dur: time.Second},
		{omega: -0.24, dur: time.Second},
	},
	"BACKWARD_TURN_RIGHT": {
		{vy: -40, dur: time.Second},
		{omega: 0.24, dur: time.Second},
	},
	"TURN_AROUND_STRAFE_LEFT": {
		{omega: -0.24, dur: 2 * time.Second},
		{vx: -40, dur: time.Second},
	},
	"TURN_AROUND_STRAFE_RIGHT": {
		{omega: 0.24, dur: 2 * time.Second},
		{vx: 40, dur: time.Second},
	},
	"FINISH": {},
}

// KnownManeuver reports whether a waypoint name has a scripted maneuver.
func KnownManeuver(name string) bool {
	_, ok := maneuvers[name]
	return ok
}

// RunManeuver executes the waypoint's scripted motion and always finishes
// with a chassis stop. It blocks for the duration of the maneuver.
func RunManeuver(ch chassis.Chassis, clk clock.Clock, name string) error {
	steps, ok := maneuvers[name]
	if !ok {
		return fmt.Errorf("no maneuver for waypoint %q", name)
	}

	defer ch.Stop()

	for _, step := range steps {
		if err := ch.SetVelocity(step.vx, step.vy, step.omega); err != nil {
			return fmt.Errorf("maneuver %s failed: %w", name, err)
		}
		clk.Sleep(step.dur)
	}

	return nil
}
