package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	logxi "github.com/mgutz/logxi/v1"

	volumiwled "github.com/petjek/VolumiWLED"
	"github.com/petjek/VolumiWLED/version"

	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag
)

var (
	logger = logxi.New("volumiwled")

	verbose  = flag.Bool("v", false, "When enabled will print internal logging for this tool")
	configFn = flag.String("config", "config.yaml", "Path to the YAML configuration file")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options]       volumio ← HTTP → WLED (volumiwled)      ", version.GitHash, "    ", version.BuildTime)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "volumiwled is a bridge between the Volumio music player and WLED or OPC driven LED strips")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

// stopOnSignal closes quitC on the first signal and then restores the default
// handling so that a second interrupt kills a bridge stuck shutting down
func stopOnSignal(sigC chan os.Signal, quitC chan struct{}) {
	sig := <-sigC
	logger.Info("stopping", "signal", sig.String())
	close(quitC)
	signal.Stop(sigC)
}

func main() {

	// Parse the CLI flags
	if !flag.Parsed() {
		envflag.Parse()
	}

	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	logger.Debug(fmt.Sprintf("%s built at %s, against commit id %s", os.Args[0], version.BuildTime, version.GitHash))

	// Configuration problems are the only errors that stop the bridge
	cfg, err := volumiwled.LoadConfig(*configFn)
	if err != nil {
		logger.Error("could not load the configuration", "error", err.Error())
		os.Exit(1)
	}

	source := volumiwled.NewVolumio(cfg.Volumio.Host, cfg.Volumio.Port, cfg.Timeout)
	sink := volumiwled.NewSink(cfg)

	quitC := make(chan struct{})

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	go stopOnSignal(sigC, quitC)

	gw := &volumiwled.Gateway{}
	doneC, subscribeC := gw.Start(cfg, source, sink, logger, quitC)

	if *verbose {
		go runMonitoring(subscribeC, quitC)
	}

	logger.Info("started", "volumio", source.URL(), "leds", cfg.LEDCount)

	<-doneC
}
