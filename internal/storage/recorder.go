package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"navbot/internal/logger"
)

// Snapshot is one annotated frame waiting to be written to disk.
type Snapshot struct {
	Filename string
	Data     []byte
}

// Recorder buffers detection snapshots in memory and flushes them to disk on
// a fixed interval, so the detection path never waits on the filesystem.
type Recorder struct {
	dir    string
	limit  int
	logger *logger.Logger

	mu        sync.Mutex
	snapshots []Snapshot
}

func NewRecorder(dir string, limit int, log *logger.Logger) *Recorder {
	return &Recorder{
		dir:       dir,
		limit:     limit,
		logger:    log,
		snapshots: make([]Snapshot, 0),
	}
}

// Run flushes the buffer every flushInterval seconds until stop closes, then
// flushes one final time.
func (r *Recorder) Run(flushInterval int, stop chan struct{}) {
	ticker := time.NewTicker(time.Duration(flushInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			r.Flush()
			return
		case <-ticker.C:
			r.Flush()
		}
	}
}

// Add queues a snapshot and returns the filename it will be saved under. A
// full buffer drops the snapshot and returns an empty name.
func (r *Recorder) Add(data []byte, mode, label string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.snapshots) >= r.limit {
		return ""
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s_%s.jpg", timestamp, mode, label)
	r.snapshots = append(r.snapshots, Snapshot{Filename: filename, Data: data})
	return filename
}

// Flush writes all buffered snapshots to the snapshot directory.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.snapshots) == 0 {
		return
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.logger.Error("Error creating snapshot directory: %v", err)
		return
	}

	for _, snap := range r.snapshots {
		fullpath := filepath.Join(r.dir, snap.Filename)
		if err := os.WriteFile(fullpath, snap.Data, 0644); err != nil {
			r.logger.Error("Error saving snapshot %s: %v", snap.Filename, err)
			continue
		}
	}

	r.logger.Info("Flushed %d snapshots to disk", len(r.snapshots))
	r.snapshots = r.snapshots[:0]
}
