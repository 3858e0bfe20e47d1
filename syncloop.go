package volumiwled

// This file contains the loop that on a regular basis lifts the state of the
// player, decides what the strip should show and pushes full frames to the
// lighting controller.  Only the goroutine running the loop touches the
// rotation phase and the previously seen status.

import (
	"bytes"
	"sync/atomic"
	"time"

	"github.com/karlmutch/errors"

	"github.com/cnf/structhash"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/petjek/VolumiWLED/model"
)

// LoopState is the lifecycle stage of a SyncLoop
type LoopState int32

const (
	StateIdle LoopState = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (state LoopState) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// powerState is the last power command the sink accepted
type powerState struct {
	known      bool
	on         bool
	brightness int
}

type SyncLoop struct {
	cfg    *StripConfig
	source StateSource
	sink   Sink
	logger logxi.Logger

	phase     int
	previous  model.Status
	trackHash []byte
	power     powerState

	transitionC chan<- *Transition

	state int32
}

// NewSyncLoop creates a loop, cfg is expected to have been validated
func NewSyncLoop(cfg *StripConfig, source StateSource, sink Sink, logger logxi.Logger) (loop *SyncLoop) {
	return &SyncLoop{
		cfg:    cfg,
		source: source,
		sink:   sink,
		logger: logger,
	}
}

// Publish sets the channel status and track transitions are offered to.  A
// transition is dropped rather than blocking the loop if the channel is full.
// It must be called before Run.
func (loop *SyncLoop) Publish(transitionC chan<- *Transition) {
	loop.transitionC = transitionC
}

func (loop *SyncLoop) Phase() int {
	return loop.phase
}

func (loop *SyncLoop) PreviousStatus() model.Status {
	return loop.previous
}

// State is safe to call from any goroutine
func (loop *SyncLoop) State() LoopState {
	return LoopState(atomic.LoadInt32(&loop.state))
}

// Run ticks until quitC is closed, then clears and powers off the strip
func (loop *SyncLoop) Run(quitC <-chan struct{}) {
	atomic.StoreInt32(&loop.state, int32(StateRunning))
	defer atomic.StoreInt32(&loop.state, int32(StateStopped))

	if err := loop.assertPower(true, loop.cfg.Brightness); err != nil {
		loop.logger.Error("could not power on the strip", "error", err.Error())
	}

	for {
		select {
		case <-quitC:
			loop.shutdown()
			return
		default:
		}

		wait, _ := loop.Tick()

		select {
		case <-time.After(wait):
		case <-quitC:
			loop.shutdown()
			return
		}
	}
}

// Tick polls the player once and dispatches whatever the selector decides.
// The returned duration is how long to wait before the next tick.  Errors are
// logged before being returned, none of them are fatal.
func (loop *SyncLoop) Tick() (wait time.Duration, err errors.Error) {
	wait = loop.cfg.UpdateInterval

	state, err := loop.source.FetchState()
	if err != nil {
		loop.logger.Warn("could not get player state, retrying", "error", err.Error())
		return wait, err
	}

	loop.observe(state)

	action := Select(state.Status, state.DurationValid(), loop.cfg)
	if err = loop.execute(action, state); err != nil {
		loop.logger.Error("could not update the strip", "action", action.Kind.String(), "error", err.Error())
	}

	if action.Kind == ActionRotation && action.Playing {
		loop.phase = Advance(loop.phase, loop.cfg.LEDCount)
		wait += loop.cfg.Rotation.Speed
	}
	return wait, err
}

func (loop *SyncLoop) execute(action Action, state *model.PlayerState) (err errors.Error) {
	ledCount := loop.cfg.LEDCount

	switch action.Kind {
	case ActionProgress:
		errPower := loop.assertPower(true, loop.cfg.Brightness)
		frame := RenderProgress(state.Elapsed, state.Duration, ledCount, loop.cfg.Progress.Color)
		if err = loop.sink.SetFrame(frame); err != nil {
			return err
		}
		return errPower

	case ActionRotation:
		// A record that is not turning shows nothing
		if !action.Playing {
			return loop.sink.Clear(ledCount)
		}
		errPower := loop.assertPower(true, loop.cfg.Brightness)
		frame := RenderRotation(loop.phase, ledCount, loop.cfg.Rotation.Color, SectionsPerRevolution)
		if err = loop.sink.SetFrame(frame); err != nil {
			return err
		}
		return errPower

	case ActionDim:
		return loop.assertPower(true, action.Brightness)

	default:
		return loop.sink.Clear(ledCount)
	}
}

// assertPower only talks to the sink when the wanted power state differs
// from the last one it accepted
func (loop *SyncLoop) assertPower(on bool, brightness int) (err errors.Error) {
	wanted := powerState{known: true, on: on, brightness: brightness}
	if loop.power == wanted {
		return nil
	}
	if err = loop.sink.SetPower(on, brightness); err != nil {
		loop.power = powerState{}
		return err
	}
	loop.power = wanted
	return nil
}

func (loop *SyncLoop) observe(state *model.PlayerState) {
	statusChanged := state.Status != loop.previous
	if statusChanged {
		loop.logger.Info("player status changed", "from", string(loop.previous), "to", string(state.Status))
	}

	hash := structhash.Md5(state.Track, 1)
	trackChanged := !bytes.Equal(hash, loop.trackHash)
	if trackChanged && state.Track.Title != "" {
		loop.logger.Info("track changed", "title", state.Track.Title, "artist", state.Track.Artist)
	}

	if statusChanged || trackChanged {
		loop.publish(&Transition{
			From:  loop.previous,
			To:    state.Status,
			Track: state.Track,
			At:    time.Now(),
		})
	}

	loop.previous = state.Status
	loop.trackHash = hash
}

func (loop *SyncLoop) publish(transition *Transition) {
	if loop.transitionC == nil {
		return
	}
	select {
	case loop.transitionC <- transition:
	default:
		loop.logger.Debug("transition dropped", "to", string(transition.To))
	}
}

func (loop *SyncLoop) shutdown() {
	atomic.StoreInt32(&loop.state, int32(StateShuttingDown))
	loop.logger.Info("shutting down, turning the strip off")

	if err := loop.sink.Clear(loop.cfg.LEDCount); err != nil {
		loop.logger.Error("could not clear the strip", "error", err.Error())
	}
	if err := loop.assertPower(false, KeepBrightness); err != nil {
		loop.logger.Error("could not power off the strip", "error", err.Error())
	}
}
