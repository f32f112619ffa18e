package chassis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"navbot/internal/logger"
)

// Chassis accepts a planar velocity vector (mm/s) and a rotation rate. The
// mecanum kinematics behind it are an external collaborator; this package
// never addresses individual motors.
type Chassis interface {
	SetVelocity(vxMM, vyMM, omega float64) error
	Stop() error
}

type velocityCommand struct {
	VxMM  float64 `json:"vx_mm_s"`
	VyMM  float64 `json:"vy_mm_s"`
	Omega float64 `json:"omega"`
}

// Bridge sends velocity commands to the drive daemon over HTTP.
type Bridge struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func NewBridge(baseURL string, log *logger.Logger) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 2 * time.Second},
		logger:  log,
	}
}

func (b *Bridge) SetVelocity(vxMM, vyMM, omega float64) error {
	return b.post("/velocity", velocityCommand{VxMM: vxMM, VyMM: vyMM, Omega: omega})
}

func (b *Bridge) Stop() error {
	return b.post("/stop", velocityCommand{})
}

func (b *Bridge) post(path string, cmd velocityCommand) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode chassis command: %w", err)
	}

	resp, err := b.client.Post(b.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chassis bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chassis bridge returned %s for %s", resp.Status, path)
	}
	return nil
}

// Nop is a chassis that only logs, for running the stack without hardware.
type Nop struct {
	logger *logger.Logger
}

func NewNop(log *logger.Logger) *Nop {
	return &Nop{logger: log}
}

func (n *Nop) SetVelocity(vxMM, vyMM, omega float64) error {
	n.logger.Info("chassis (nop): vx=%.0f vy=%.0f omega=%.2f", vxMM, vyMM, omega)
	return nil
}

func (n *Nop) Stop() error {
	n.logger.Info("chassis (nop): stop")
	return nil
}
