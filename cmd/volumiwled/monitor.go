package main

import (
	"fmt"

	volumiwled "github.com/petjek/VolumiWLED"
)

// This file implements a monitor that subscribes to and displays
// the player transitions seen by the sync loop

func runMonitoring(subscribeC chan chan *volumiwled.Transition, quitC <-chan struct{}) {

	transitionC := make(chan *volumiwled.Transition, 1)
	subscribeC <- transitionC

	for {
		select {
		case msg := <-transitionC:
			logger.Debug(fmt.Sprintf("%s -> %s %q by %q", msg.From, msg.To, msg.Track.Title, msg.Track.Artist))
		case <-quitC:
			return
		}
	}
}
