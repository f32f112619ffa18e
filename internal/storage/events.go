package storage

import (
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/camera"
	"navbot/internal/logger"
	"navbot/internal/models"
	"navbot/internal/nav"
	"navbot/internal/repository/sqlite"
	"navbot/internal/vision"
)

// EventService samples the current detection result on a fixed cadence and
// records notable detections: an event row in SQLite plus an annotated
// snapshot on disk. It is a pure consumer of the result slot and never slows
// the detection loop down.
type EventService struct {
	manager  *vision.Manager
	camera   *camera.Source
	repo     *sqlite.EventRepository
	recorder *Recorder
	markers  nav.MarkerTable
	logger   *logger.Logger

	lastSeq uint64
}

func NewEventService(manager *vision.Manager, cam *camera.Source, repo *sqlite.EventRepository, rec *Recorder, markers nav.MarkerTable, log *logger.Logger) *EventService {
	return &EventService{
		manager:  manager,
		camera:   cam,
		repo:     repo,
		recorder: rec,
		markers:  markers,
		logger:   log,
	}
}

// Run samples once per interval until stop closes.
func (s *EventService) Run(interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.recordOnce()
		}
	}
}

// recordOnce records the current result when it is new and non-empty.
func (s *EventService) recordOnce() {
	res, ok := s.manager.Latest()
	if !ok || len(res.Items) == 0 || res.FrameSeq == s.lastSeq {
		return
	}
	s.lastSeq = res.FrameSeq

	item := res.Items[0]
	if res.Mode == vision.ModeFiducial {
		// Record the marker the navigator would track.
		for i := range res.Items {
			if res.Items[i].Pose != nil && (item.Pose == nil || res.Items[i].Pose.Z < item.Pose.Z) {
				item = res.Items[i]
			}
		}
	}

	label := item.Label
	if res.Mode == vision.ModeFiducial {
		label = s.markers.Name(item.MarkerID)
	}

	event := &models.Event{
		At:         res.At,
		Mode:       string(res.Mode),
		Label:      label,
		MarkerID:   item.MarkerID,
		Confidence: item.Confidence,
		Snapshot:   s.captureSnapshot(res, label),
	}
	if item.Pose != nil {
		event.X = item.Pose.X
		event.Y = item.Pose.Y
		event.Z = item.Pose.Z
	}

	if _, err := s.repo.Insert(event); err != nil {
		s.logger.Error("Failed to record detection event: %v", err)
	}
}

// captureSnapshot saves an annotated copy of the latest frame and returns
// its filename, or an empty name when no frame or buffer slot is available.
func (s *EventService) captureSnapshot(res vision.Result, label string) string {
	frame, ok := s.camera.Latest()
	if !ok {
		return ""
	}
	defer frame.Close()

	annotated := frame.Mat.Clone()
	defer annotated.Close()
	vision.DrawOverlay(&annotated, res, s.markers)

	buf, err := gocv.IMEncode(".jpg", annotated)
	if err != nil {
		s.logger.Error("Failed to encode snapshot: %v", err)
		return ""
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	return s.recorder.Add(data, string(res.Mode), label)
}
