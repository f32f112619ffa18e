package handlers

import (
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"navbot/internal/camera"
	"navbot/internal/logger"
	"navbot/internal/nav"
	"navbot/internal/vision"
)

const framePause = 33 * time.Millisecond // ~30 fps stream pacing

// VideoFeedHandler streams the latest frames as an MJPEG multipart stream,
// annotated with the current detection result's overlays.
func VideoFeedHandler(cam *camera.Source, manager *vision.Manager, markers nav.MarkerTable, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

		var lastSeq uint64
		for {
			select {
			case <-r.Context().Done():
				return
			default:
			}

			frame, ok := cam.Latest()
			if !ok || frame.Seq == lastSeq {
				if ok {
					frame.Close()
				}
				time.Sleep(10 * time.Millisecond)
				continue
			}
			lastSeq = frame.Seq

			annotated := frame.Mat.Clone()
			if res, ok := manager.Latest(); ok {
				vision.DrawOverlay(&annotated, res, markers)
			}

			buf, err := gocv.IMEncode(".jpg", annotated)
			annotated.Close()
			frame.Close()
			if err != nil {
				log.Error("Failed to encode video frame: %v", err)
				continue
			}

			if _, err := w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")); err != nil {
				buf.Close()
				return
			}
			if _, err := w.Write(buf.GetBytes()); err != nil {
				buf.Close()
				return
			}
			if _, err := w.Write([]byte("\r\n")); err != nil {
				buf.Close()
				return
			}
			buf.Close()
			flusher.Flush()

			time.Sleep(framePause)
		}
	}
}
