package volumiwled

import (
	"github.com/petjek/VolumiWLED/model"
)

// ActionKind enumerates what a single tick can do to the strip
type ActionKind int

const (
	// ActionOff clears every LED leaving the strip brightness alone
	ActionOff ActionKind = iota
	// ActionProgress renders the progress bar
	ActionProgress
	// ActionRotation renders the spinning record
	ActionRotation
	// ActionDim leaves the LEDs as they are and lowers the brightness
	ActionDim
)

func (kind ActionKind) String() string {
	switch kind {
	case ActionOff:
		return "off"
	case ActionProgress:
		return "progress"
	case ActionRotation:
		return "rotation"
	case ActionDim:
		return "dim"
	default:
		return "unknown"
	}
}

// Action is the outcome of Select
type Action struct {
	Kind ActionKind

	// Playing is only meaningful for ActionRotation, a rotation that is not
	// playing clears the strip and holds the phase
	Playing bool

	// Brightness is only meaningful for ActionDim
	Brightness int
}

// Select decides what should be rendered for the player status. The
// progress bar is preferred over the rotation whenever both could be shown.
// It has no side effects.
func Select(status model.Status, durationValid bool, cfg *StripConfig) (action Action) {
	progress := cfg.Progress.Enabled && durationValid

	switch status {
	case model.StatusPlaying:
		if progress {
			return Action{Kind: ActionProgress}
		}
		if cfg.Rotation.Enabled {
			return Action{Kind: ActionRotation, Playing: true}
		}
		return Action{Kind: ActionOff}

	case model.StatusPaused:
		if progress {
			return Action{Kind: ActionProgress}
		}
		return Action{Kind: ActionDim, Brightness: cfg.DimBrightness()}

	default:
		return Action{Kind: ActionOff}
	}
}
