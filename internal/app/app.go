// Package app wires the handlight pipeline together: camera frames in,
// debounced light commands out.
package app

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/actuator"
	"github.com/rghosal/handlight/internal/capture"
	"github.com/rghosal/handlight/internal/config"
	"github.com/rghosal/handlight/internal/detector"
	"github.com/rghosal/handlight/internal/gesture"
	"github.com/rghosal/handlight/internal/video"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is still.
	IdleFPS = 5
	// ActiveFPS is the frame rate while motion is present.
	ActiveFPS = 15
	// IdleTimeoutMs is how long after the last motion the pipeline drops
	// back to the idle rate.
	IdleTimeoutMs = 2000
)

// Snapshot is a read-only view of the session's tracked state, taken after a
// classification tick.
type Snapshot struct {
	SessionID       string          `json:"session_id"`
	TrackingEnabled bool            `json:"tracking_enabled"`
	LightOn         bool            `json:"light_on"`
	Brightness      int             `json:"brightness"`
	Gesture         gesture.Gesture `json:"gesture"`
	HandDetected    bool            `json:"hand_detected"`
}

// EventListener receives every non-trivial pipeline outcome: the emitted
// event plus the state snapshot it produced.
type EventListener func(ev gesture.Event, snap Snapshot)

// Config holds the session's collaborators. Camera and Detector are
// injected so tests can substitute mocks; Light may be nil when no actuator
// credentials are configured.
type Config struct {
	Settings *config.Config
	Camera   capture.Camera
	Detector detector.Detector
	Light    actuator.Actuator
	Logger   *zap.Logger
	Notice   actuator.NoticeFunc
}

// Session owns one streaming session's gesture pipeline. The state machine
// it contains is accessed by exactly one classification at a time: a
// single-flight gate drops frames that arrive while one is outstanding, and
// lifecycle methods serialize against it with a mutex.
type Session struct {
	id         string
	settings   *config.Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	det        detector.Detector
	throttle   *video.Throttle
	classifier *gesture.Classifier
	dispatcher *actuator.Dispatcher
	log        *zap.Logger

	machineMu sync.Mutex
	machine   *gesture.StateMachine

	inflight atomic.Bool

	tracking atomic.Bool

	mu        sync.RWMutex
	stopCh    chan struct{}
	latest    *video.Frame
	listeners []EventListener
}

// New creates a Session from its collaborators.
func New(cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	st := cfg.Settings

	s := &Session{
		id:         uuid.NewString(),
		settings:   st,
		camera:     cfg.Camera,
		motion:     capture.NewMotionDetector(st.MotionThreshold),
		det:        cfg.Detector,
		throttle:   video.NewThrottle(st.FrameSkip),
		classifier: gesture.NewClassifier(st.OpenThreshold, st.ClosedThreshold),
		dispatcher: actuator.NewDispatcher(cfg.Light, log, cfg.Notice),
		log:        log,
		machine: gesture.NewStateMachine(gesture.MachineConfig{
			ToggleDebounce:     st.ToggleDebounce,
			BrightnessDebounce: st.BrightnessDebounce,
			RotationThreshold:  st.RotationThresholdDeg,
			BrightnessStep:     st.BrightnessStep,
		}),
	}
	s.tracking.Store(true)
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Start opens the camera and begins the frame loop.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return nil
	}

	if err := s.camera.Open(); err != nil {
		return err
	}

	s.camera.SetFPS(IdleFPS)
	s.stopCh = make(chan struct{})
	go s.run(s.stopCh)

	s.log.Info("gesture pipeline started", zap.String("session_id", s.id))
	return nil
}

// Stop halts frame admission and resets the gesture state. An in-flight
// classification is abandoned rather than waited for; it can finish on its
// own without blocking shutdown.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}

	if err := s.camera.Close(); err != nil {
		s.log.Warn("error closing camera", zap.Error(err))
	}

	s.motion.Close()

	if s.det != nil {
		if err := s.det.Close(); err != nil {
			s.log.Warn("error closing detector", zap.Error(err))
		}
	}

	s.machineMu.Lock()
	s.machine.Reset()
	s.machineMu.Unlock()

	s.log.Info("gesture pipeline stopped", zap.String("session_id", s.id))
}

// SetTrackingEnabled toggles gesture tracking. Disabling fully resets the
// state machine and the throttle phase, so re-enabling starts clean.
func (s *Session) SetTrackingEnabled(enabled bool) {
	s.tracking.Store(enabled)

	if !enabled {
		s.throttle.Reset()
		s.machineMu.Lock()
		s.machine.Reset()
		s.machineMu.Unlock()
	}
}

// TrackingEnabled reports whether gesture tracking is on.
func (s *Session) TrackingEnabled() bool {
	return s.tracking.Load()
}

// OnEvent registers a listener for classification outcomes.
func (s *Session) OnEvent(fn EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// LatestFrame returns the most recent normalized frame, or nil before the
// first one arrives.
func (s *Session) LatestFrame() *video.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Snapshot returns the session's current tracked state.
func (s *Session) Snapshot() Snapshot {
	s.machineMu.Lock()
	defer s.machineMu.Unlock()
	return s.snapshotLocked(gesture.HandState{})
}

// SetBrightness resyncs the tracked brightness with actuator-reported state.
func (s *Session) SetBrightness(level int) {
	s.machineMu.Lock()
	defer s.machineMu.Unlock()
	s.machine.SetBrightness(level)
}

// snapshotLocked assumes machineMu is held.
func (s *Session) snapshotLocked(hs gesture.HandState) Snapshot {
	return Snapshot{
		SessionID:       s.id,
		TrackingEnabled: s.TrackingEnabled(),
		LightOn:         s.machine.LightOn(),
		Brightness:      s.machine.Brightness(),
		Gesture:         s.machine.CurrentGesture(),
		HandDetected:    hs.HandDetected,
	}
}
