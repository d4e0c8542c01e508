package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/gesture"
	"github.com/rghosal/handlight/internal/video"
)

// run is the frame loop. It reads and normalizes every camera frame, keeps
// the latest one for the preview stream, and hands every throttle-admitted
// frame to the gesture lane. Classification runs on its own goroutine so a
// slow or hung detector never blocks frame display; while one classification
// is in flight, newly admitted frames are dropped, not queued.
func (s *Session) run(stopCh <-chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := s.camera.ReadFrame()
			if err != nil {
				s.log.Debug("error reading frame", zap.Error(err))
				continue
			}

			normalized, err := video.Normalize(frame)
			if err != nil {
				// Malformed input aborts this frame only; the pipeline
				// continues on the next one.
				s.log.Warn("dropping malformed frame", zap.Error(err))
				continue
			}

			s.mu.Lock()
			s.latest = normalized
			s.mu.Unlock()

			// Motion-gated frame rate, cheap luma differencing on the raw
			// frame. A still scene idles the camera down.
			motionDetected, _ := s.motion.Detect(frame)
			if motionDetected {
				lastMotionTime = time.Now()
				if !activeMode {
					activeMode = true
					s.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					s.log.Debug("switched to active mode")
				}
			} else if activeMode && time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
				activeMode = false
				s.camera.SetFPS(IdleFPS)
				frameInterval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(frameInterval)
				s.log.Debug("switched to idle mode")
			}

			if !s.TrackingEnabled() {
				continue
			}

			if !s.throttle.Admit() {
				continue
			}

			// One outstanding classification at a time; admitted frames
			// arriving while it runs are simply dropped.
			if !s.inflight.CompareAndSwap(false, true) {
				continue
			}

			go func(f *video.Frame) {
				defer s.inflight.Store(false)
				s.classify(f, time.Now())
			}(normalized)
		}
	}
}

// classify runs one gesture tick: detector, classifier, state machine,
// dispatcher. Detector failures are logged and treated as "no hand" for this
// tick; they never propagate.
func (s *Session) classify(frame *video.Frame, now time.Time) {
	lm, err := s.det.Detect(frame)
	if err != nil {
		s.log.Debug("hand detection failed, treating as no hand", zap.Error(err))
		lm = nil
	}

	hs := s.classifier.Classify(lm)

	s.machineMu.Lock()
	ev := s.machine.Process(hs, now)
	level := s.machine.Brightness()
	snap := s.snapshotLocked(hs)
	s.machineMu.Unlock()

	if ev.Kind != gesture.NoAction {
		s.log.Info("gesture event",
			zap.Stringer("event", ev),
			zap.String("gesture", string(hs.Gesture)),
			zap.Float64("rotation_deg", hs.RotationAngle),
			zap.Int("brightness", level))
	}

	s.dispatcher.Dispatch(ev, level)
	s.notify(ev, snap)
}

func (s *Session) notify(ev gesture.Event, snap Snapshot) {
	s.mu.RLock()
	listeners := make([]EventListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ev, snap)
	}
}
