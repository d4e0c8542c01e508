package actuator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/gesture"
)

// commandTimeout bounds how long a single fire-and-forget command may hang
// on the network.
const commandTimeout = 10 * time.Second

// NoticeFunc receives a short user-visible message when a command fails.
// Failures are transient notices, never pipeline errors.
type NoticeFunc func(msg string)

// Dispatcher maps gesture events onto actuator commands. Commands are
// fire-and-forget and unordered relative to each other; each one carries the
// state machine's absolute brightness, so arrival order cannot corrupt the
// light's level. Failures never feed back into gesture state.
type Dispatcher struct {
	light  Actuator
	log    *zap.Logger
	notice NoticeFunc
}

// NewDispatcher creates a Dispatcher over the given actuator. A nil actuator
// means no credentials are configured: events are dropped with a warning
// instead of surfacing an error.
func NewDispatcher(light Actuator, log *zap.Logger, notice NoticeFunc) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{light: light, log: log, notice: notice}
}

// Configured reports whether an actuator is wired in.
func (d *Dispatcher) Configured() bool {
	return d.light != nil
}

// Dispatch sends the command for one gesture event. For BrightnessChange the
// caller passes the state machine's newly tracked absolute level; the
// event's delta is never sent to the device. NoAction performs nothing.
func (d *Dispatcher) Dispatch(ev gesture.Event, level int) {
	if ev.Kind == gesture.NoAction {
		return
	}

	if d.light == nil {
		d.log.Warn("dropping gesture event, no light credentials configured",
			zap.Stringer("event", ev))
		return
	}

	cmdID := uuid.NewString()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		var err error
		switch ev.Kind {
		case gesture.LightOn:
			err = d.light.Power(ctx, true)
		case gesture.LightOff:
			err = d.light.Power(ctx, false)
		case gesture.BrightnessChange:
			err = d.light.SetBrightness(ctx, level)
		}

		if err != nil {
			d.log.Error("light command failed",
				zap.String("command_id", cmdID),
				zap.Stringer("event", ev),
				zap.Int("level", level),
				zap.Error(err))
			if d.notice != nil {
				d.notice("light command failed: " + err.Error())
			}
			return
		}

		d.log.Debug("light command delivered",
			zap.String("command_id", cmdID),
			zap.Stringer("event", ev),
			zap.Int("level", level))
	}()
}
