package vision

import (
	"fmt"
	"sync"
	"time"

	"navbot/internal/logger"
)

// Status is the manager's externally visible state.
type Status struct {
	Mode      Mode              `json:"mode"`
	Count     int               `json:"count"`
	HasResult bool              `json:"has_result"`
	Debug     map[string]string `json:"debug"`
}

// Manager owns exactly one active detector and runs it continuously against
// the latest frame on its own goroutine. The current Result lives in a
// single last-write-wins slot; switching modes invalidates it so a client
// never observes a result produced by the previous mode.
type Manager struct {
	source    FrameSource
	detectors map[Mode]Detector
	logger    *logger.Logger

	// mu serializes SetMode against the loop's read of the active detector.
	// It is never held across Infer.
	mu         sync.Mutex
	mode       Mode
	generation uint64

	resMu     sync.RWMutex
	result    Result
	hasResult bool
	lastSeq   uint64
	lastInfer time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewManager wires the detectors and warms the initial mode eagerly; a
// manager never serves results from a detector that is not ready.
func NewManager(source FrameSource, detectors map[Mode]Detector, initial Mode, log *logger.Logger) (*Manager, error) {
	det, ok := detectors[initial]
	if !ok {
		return nil, fmt.Errorf("no detector registered for initial mode %q", initial)
	}
	if err := det.Warmup(); err != nil {
		return nil, fmt.Errorf("failed to warm initial detector %q: %w", initial, err)
	}

	return &Manager{
		source:    source,
		detectors: detectors,
		logger:    log,
		mode:      initial,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Run is the detection loop. It polls the frame slot, skips frames already
// inferred, and publishes each result atomically. Call in its own goroutine.
func (m *Manager) Run() {
	defer close(m.done)

	var seenSeq uint64

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		frame, ok := m.source.Latest()
		if !ok || frame.Seq == seenSeq {
			if ok {
				frame.Close()
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Snapshot the active detector under the lock, then infer unlocked
		// so a slow model never blocks SetMode or status reads.
		m.mu.Lock()
		det := m.detectors[m.mode]
		gen := m.generation
		m.mu.Unlock()

		start := time.Now()
		result, err := det.Infer(frame)
		elapsed := time.Since(start)

		seenSeq = frame.Seq
		frame.Close()

		if err != nil {
			// No result this cycle; the previous result stays current.
			m.logger.Warning("Inference failed in mode %s: %v", det.Name(), err)
			continue
		}

		m.mu.Lock()
		stale := gen != m.generation
		m.mu.Unlock()
		if stale {
			// The mode changed while this inference was in flight; the
			// result belongs to the old mode and is discarded.
			continue
		}

		m.publish(result, seenSeq, elapsed)
	}
}

func (m *Manager) publish(res Result, seq uint64, elapsed time.Duration) {
	m.resMu.Lock()
	m.result = res
	m.hasResult = true
	m.lastSeq = seq
	m.lastInfer = elapsed
	m.resMu.Unlock()
}

// SetMode activates a different detector variant. Warm-up happens eagerly
// and the call blocks until the new detector is ready; on warm-up failure
// the previous mode stays active and the error is returned to the caller.
func (m *Manager) SetMode(mode Mode) error {
	det, ok := m.detectors[mode]
	if !ok {
		return fmt.Errorf("no detector registered for mode %q", mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if mode == m.mode {
		return nil
	}

	if err := det.Warmup(); err != nil {
		return fmt.Errorf("failed to warm detector %q: %w", mode, err)
	}

	m.mode = mode
	m.generation++

	// Drop the cached result so status never shows the old mode's output.
	m.resMu.Lock()
	m.result = Result{}
	m.hasResult = false
	m.resMu.Unlock()

	m.logger.Info("Detector mode switched to %s", mode)
	return nil
}

// Mode returns the active detector mode.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Latest returns the current result without blocking the detection loop.
func (m *Manager) Latest() (Result, bool) {
	m.resMu.RLock()
	defer m.resMu.RUnlock()
	return m.result, m.hasResult
}

// Status reports mode, current detection count and debug timing.
func (m *Manager) Status() Status {
	m.resMu.RLock()
	res := m.result
	ok := m.hasResult
	lastSeq := m.lastSeq
	lastInfer := m.lastInfer
	m.resMu.RUnlock()

	return Status{
		Mode:      m.Mode(),
		Count:     len(res.Items),
		HasResult: ok,
		Debug: map[string]string{
			"last_infer_ms":  fmt.Sprintf("%.1f", float64(lastInfer.Microseconds())/1000),
			"last_frame_seq": fmt.Sprintf("%d", lastSeq),
		},
	}
}

// Stop halts the loop and releases all detectors.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stop)
		<-m.done

		for _, det := range m.detectors {
			if err := det.Close(); err != nil {
				m.logger.Warning("Failed to close detector %s: %v", det.Name(), err)
			}
		}
	})
}
