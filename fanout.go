package volumiwled

import (
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"

	"github.com/petjek/VolumiWLED/model"
)

// Transition is published whenever the sync loop observes a change of the
// player status or of the loaded track
type Transition struct {
	From  model.Status
	To    model.Status
	Track model.Track
	At    time.Time
}

// Fanout relays transitions to any number of subscribers
type Fanout struct {
	subs   []chan *Transition
	logger logxi.Logger
	sync.Mutex
}

// NewFanout creates a broadcaster, Start must be called before it will relay
// anything
func NewFanout(logger logxi.Logger) (fan *Fanout) {
	return &Fanout{
		subs:   []chan *Transition{},
		logger: logger,
	}
}

// Subscribers returns the number of currently registered listeners
func (fan *Fanout) Subscribers() int {
	fan.Lock()
	defer fan.Unlock()
	return len(fan.subs)
}

// Start implements a broadcast mechanisim for accepting transitions and
// relaying them to subscribers.  The function returns a single channel to
// which transitions get sent and, a channel that can be used to add listeners
//
func (fan *Fanout) Start(quitC <-chan struct{}) (inC chan *Transition, subC chan chan *Transition) {

	inC = make(chan *Transition, 1)
	subC = make(chan chan *Transition, 1)

	go func(quitC <-chan struct{}) {
		defer fan.logger.Debug("fanout stopped")
		for {
			select {
			case <-quitC:
				return
			case sub := <-subC:
				if nil != sub {
					fan.Lock()
					fan.subs = append(fan.subs, sub)
					fan.Unlock()
					fan.logger.Debug("subscription added")
				}
			case msg := <-inC:
				// Subscribers that cannot keep up are groomed out using
				// https://github.com/golang/go/wiki/SliceTricks#filtering-without-allocating
				fan.Lock()
				newSubs := fan.subs[:0]
				for _, ch := range fan.subs {
					select {
					case ch <- msg:
						newSubs = append(newSubs, ch)
					case <-time.After(250 * time.Millisecond):
						fan.logger.Warn("subscription dropped, failed to send")
					}
				}
				fan.subs = newSubs
				fan.Unlock()
			}
		}
	}(quitC)

	return inC, subC
}
