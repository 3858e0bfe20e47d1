package volumiwled

// This module wires the player state source, the lighting output and the
// transition broadcaster together and starts the sync loop

import (
	logxi "github.com/mgutz/logxi/v1"
)

type Gateway struct {
	Loop   *SyncLoop
	Fanout *Fanout
}

// NewSink picks the lighting controller named in the configuration, an OPC
// server takes precedence over WLED when both are present
func NewSink(cfg *StripConfig) (sink Sink) {
	if cfg.OPC.Server != "" {
		return NewFadeCandy(cfg.OPC.Server, cfg.OPC.Channel, cfg.Timeout)
	}
	return NewWLED(cfg.WLED.Host, cfg.Timeout)
}

// Start runs the sync loop in its own goroutine.  doneC is closed once the
// loop has turned the strip off after quitC was closed.  subscribeC accepts
// channels that wish to receive status and track transitions.
func (gw *Gateway) Start(cfg *StripConfig, source StateSource, sink Sink, logger logxi.Logger, quitC <-chan struct{}) (doneC chan struct{}, subscribeC chan chan *Transition) {

	gw.Fanout = NewFanout(logger)
	transitionC, subscribeC := gw.Fanout.Start(quitC)

	gw.Loop = NewSyncLoop(cfg, source, sink, logger)
	gw.Loop.Publish(transitionC)

	doneC = make(chan struct{})
	go func() {
		defer close(doneC)
		gw.Loop.Run(quitC)
	}()

	return doneC, subscribeC
}
