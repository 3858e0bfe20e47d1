package main

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStopOnSignal(t *testing.T) {
	quitC := make(chan struct{})
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGUSR1)

	// Keeps SIGUSR1 caught for the process once sigC is released
	guardC := make(chan os.Signal, 1)
	signal.Notify(guardC, syscall.SIGUSR1)
	defer signal.Stop(guardC)

	doneC := make(chan struct{})
	go func() {
		defer close(doneC)
		stopOnSignal(sigC, quitC)
	}()

	sigC <- syscall.SIGTERM

	select {
	case <-quitC:
	case <-time.After(time.Second):
		t.Fatal("quit channel not closed")
	}
	select {
	case <-doneC:
	case <-time.After(time.Second):
		t.Fatal("signal handler did not return")
	}

	// The channel is no longer registered so nothing more is delivered to it
	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))
	select {
	case sig := <-sigC:
		t.Fatalf("signal %v delivered after stop", sig)
	case <-guardC:
	case <-time.After(time.Second):
		t.Fatal("signal not delivered to the remaining handler")
	}
	select {
	case sig := <-sigC:
		t.Fatalf("signal %v delivered after stop", sig)
	default:
	}
}
