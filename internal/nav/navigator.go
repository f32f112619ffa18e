package nav

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"navbot/internal/chassis"
	"navbot/internal/logger"
	"navbot/internal/vision"
)

// State of the navigation controller. Mutated only by the controller's own
// control cycle; Start and Stop are the only external influences.
type State string

const (
	StateIdle        State = "IDLE"
	StateSeeking     State = "SEEKING"
	StateApproaching State = "CENTERED_APPROACHING"
	StateHolding     State = "HOLDING"
	StateLost        State = "LOST"
)

// ResultSource supplies the latest detection result without blocking the
// detection thread.
type ResultSource interface {
	Latest() (vision.Result, bool)
}

// Navigator closes the control loop: it consumes fiducial detections and
// drives the chassis to center on the selected marker while holding the
// configured standoff distance. Losing the target past the loss timeout
// stops the chassis and parks the controller in LOST until reacquisition.
type Navigator struct {
	source      ResultSource
	chassis     chassis.Chassis
	params      ControlParams
	preferredID int // marker identity to track; -1 tracks the closest marker
	lossTimeout time.Duration
	period      time.Duration
	clock       clock.Clock
	logger      *logger.Logger

	// OnTransition, when set before Start, observes state changes.
	OnTransition func(from, to State)

	mu       sync.Mutex
	state    State
	running  bool
	lastSeen time.Time
	stop     chan struct{}
	done     chan struct{}

	// Touched only by the control loop goroutine.
	seenSeq uint64
	seenAny bool
}

type Options struct {
	Params      ControlParams
	PreferredID int
	LossTimeout time.Duration
	Period      time.Duration
	Clock       clock.Clock
}

func NewNavigator(source ResultSource, ch chassis.Chassis, opts Options, log *logger.Logger) *Navigator {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Navigator{
		source:      source,
		chassis:     ch,
		params:      opts.Params,
		preferredID: opts.PreferredID,
		lossTimeout: opts.LossTimeout,
		period:      opts.Period,
		clock:       clk,
		logger:      log,
		state:       StateIdle,
	}
}

// Start begins the control loop. Starting an already running navigator is a
// no-op.
func (n *Navigator) Start() {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return
	}
	n.running = true
	n.state = StateSeeking
	n.lastSeen = n.clock.Now()
	n.seenSeq = 0
	n.seenAny = false
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	stop, done := n.stop, n.done
	n.mu.Unlock()

	n.logger.Info("Navigation started")
	go n.run(stop, done)
}

// Stop halts the control loop and waits for its final chassis stop. Stopping
// an idle navigator is a no-op and issues no chassis command.
func (n *Navigator) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	stop, done := n.stop, n.done
	n.mu.Unlock()

	close(stop)
	<-done

	n.mu.Lock()
	n.state = StateIdle
	n.mu.Unlock()
	n.logger.Info("Navigation stopped")
}

// State returns the current navigation state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Running reports whether the control loop is active.
func (n *Navigator) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

func (n *Navigator) run(stop chan struct{}, done chan struct{}) {
	defer close(done)
	// The chassis is always stopped on the way out, whatever state the loop
	// was in.
	defer n.commandStop()

	ticker := n.clock.Ticker(n.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.step()
		}
	}
}

// step runs one control cycle. Detector or frame errors surface here as "no
// detection" and degrade through the loss path; nothing in a cycle can crash
// the loop.
func (n *Navigator) step() {
	res, ok := n.source.Latest()

	// Only a result with a new frame sequence counts as a sighting. The
	// result slot re-serves its last value when the camera or detector
	// stalls, and tracking that would drive the chassis forever.
	var target *vision.Item
	if ok && (!n.seenAny || res.FrameSeq != n.seenSeq) {
		n.seenAny = true
		n.seenSeq = res.FrameSeq
		target = selectTarget(res, n.preferredID)
	}

	now := n.clock.Now()

	if target == nil {
		n.mu.Lock()
		state := n.state
		lastSeen := n.lastSeen
		n.mu.Unlock()

		if state == StateLost {
			return
		}
		if now.Sub(lastSeen) > n.lossTimeout {
			n.transition(StateLost)
			n.commandStop()
		}
		// Inside the timeout this is a brief dropout: keep the last command.
		return
	}

	n.mu.Lock()
	n.lastSeen = now
	reacquired := n.state == StateLost
	n.mu.Unlock()

	if reacquired {
		n.transition(StateSeeking)
	}

	lateralErr := target.Pose.X
	depthErr := target.Pose.Z - n.params.Standoff
	vx, vy := n.params.Command(lateralErr, depthErr)

	if vx == 0 && vy == 0 {
		if n.transition(StateHolding) {
			n.commandStop()
		}
		return
	}

	n.transition(StateApproaching)
	if err := n.chassis.SetVelocity(vx, vy, 0); err != nil {
		n.logger.Error("Chassis velocity command failed: %v", err)
	}
}

// transition moves to a new state, returning true when the state actually
// changed.
func (n *Navigator) transition(to State) bool {
	n.mu.Lock()
	from := n.state
	if from == to {
		n.mu.Unlock()
		return false
	}
	n.state = to
	n.mu.Unlock()

	n.logger.Info("Navigation %s -> %s", from, to)
	if n.OnTransition != nil {
		n.OnTransition(from, to)
	}
	return true
}

func (n *Navigator) commandStop() {
	if err := n.chassis.Stop(); err != nil {
		n.logger.Error("Chassis stop command failed: %v", err)
	}
}

// selectTarget picks the marker to track: the preferred identity when one is
// configured, otherwise the geometrically closest marker (minimum z). Only
// fiducial results with a metric pose qualify.
func selectTarget(res vision.Result, preferredID int) *vision.Item {
	if res.Mode != vision.ModeFiducial {
		return nil
	}

	var best *vision.Item
	for i := range res.Items {
		item := &res.Items[i]
		if item.Pose == nil {
			continue
		}

		if preferredID >= 0 {
			if item.MarkerID == preferredID {
				return item
			}
			continue
		}

		if best == nil || item.Pose.Z < best.Pose.Z {
			best = item
		}
	}
	return best
}
