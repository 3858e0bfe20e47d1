package volumiwled

// This file contains the frame buffer model that renderers produce and the
// interfaces to the collaborators the sync loop polls and dispatches to

import (
	"github.com/karlmutch/errors"

	"github.com/petjek/VolumiWLED/model"
)

// KeepBrightness can be passed to Sink.SetPower to leave the controller
// brightness unchanged
const KeepBrightness = -1

// RGB is a single LED color
type RGB struct {
	R, G, B uint8
}

// Black is the color of an unlit LED
var Black = RGB{}

// NewRGB builds a color clamping each channel to [0,255]
func NewRGB(r, g, b int) RGB {
	return RGB{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

func clampChannel(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// Frame is a complete per LED color assignment, the slice position is the
// LED index so every index in [0, len) is present exactly once
type Frame []RGB

// NewFrame returns an all black frame for ledCount LEDs
func NewFrame(ledCount int) Frame {
	if ledCount < 0 {
		ledCount = 0
	}
	return make(Frame, ledCount)
}

// Lit counts the LEDs in the frame that are not black
func (frame Frame) Lit() (lit int) {
	for _, c := range frame {
		if c != Black {
			lit++
		}
	}
	return lit
}

// StateSource is implemented by collaborators that can report the current
// player state
type StateSource interface {
	FetchState() (state *model.PlayerState, err errors.Error)
}

// Sink is implemented by lighting controllers. Frames sent via SetFrame are
// full replacements, controllers are not expected to retain any per LED state
// between calls
type Sink interface {
	SetPower(on bool, brightness int) (err errors.Error)
	SetFrame(frame Frame) (err errors.Error)
	Clear(ledCount int) (err errors.Error)
}
