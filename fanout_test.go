package volumiwled

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petjek/VolumiWLED/model"
)

func TestFanoutRelays(t *testing.T) {
	quitC := make(chan struct{})
	defer close(quitC)

	fan := NewFanout(testLogger)
	inC, subC := fan.Start(quitC)

	first := make(chan *Transition, 1)
	second := make(chan *Transition, 1)
	subC <- first
	subC <- second
	require.Eventually(t, func() bool { return fan.Subscribers() == 2 }, time.Second, time.Millisecond)

	inC <- &Transition{From: model.StatusStopped, To: model.StatusPlaying}

	for _, ch := range []chan *Transition{first, second} {
		select {
		case msg := <-ch:
			assert.Equal(t, model.StatusPlaying, msg.To)
		case <-time.After(time.Second):
			t.Fatal("transition not relayed")
		}
	}
}

func TestFanoutDropsStalled(t *testing.T) {
	quitC := make(chan struct{})
	defer close(quitC)

	fan := NewFanout(testLogger)
	inC, subC := fan.Start(quitC)

	stalled := make(chan *Transition)
	subC <- stalled
	require.Eventually(t, func() bool { return fan.Subscribers() == 1 }, time.Second, time.Millisecond)

	inC <- &Transition{To: model.StatusPaused}
	require.Eventually(t, func() bool { return fan.Subscribers() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestGatewayStart(t *testing.T) {
	cfg := loopConfig()
	sink := &recordingSink{}
	source := &scriptedSource{states: []*model.PlayerState{playing(50, 200)}}

	quitC := make(chan struct{})
	gw := &Gateway{}
	doneC, subscribeC := gw.Start(cfg, source, sink, testLogger, quitC)

	transitionC := make(chan *Transition, 4)
	subscribeC <- transitionC

	require.Eventually(t, func() bool { return len(sink.ops()) >= 3 }, 2*time.Second, time.Millisecond)

	close(quitC)
	select {
	case <-doneC:
	case <-time.After(2 * time.Second):
		t.Fatal("gateway did not stop")
	}
	assert.Equal(t, StateStopped, gw.Loop.State())
	assert.Equal(t, "power", sink.last().op)
}

func TestNewSinkWLED(t *testing.T) {
	_, isWLED := NewSink(loopConfig()).(*WLED)
	assert.True(t, isWLED)
}
