package main

// The simulator stands in for both ends of the bridge on a bench.  It replays
// Volumio getState documents from a scenario directory, each file being named
// by the second at which it becomes current, and accepts WLED JSON state
// commands which it logs rather than lighting anything.

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	logxi "github.com/mgutz/logxi/v1"
)

var (
	listen       = flag.String("listen", ":8080", "Address to bind to")
	scenarioPath = flag.String("path", "./", "Directory holding the getState documents of the scenario")
	remote       = flag.Bool("remote", false, "Enable remote management of the scenario being run")
	scale        = flag.Int("scale", 1, "factor by which to accelerate the relative rate of the clock")
	loop         = flag.Bool("loop", true, "Restart the scenario once the last document has been served for a second")
)

type testSlot struct {
	secondSlot int    // The second at which the document activates
	body       []byte // The getState document
}

type testWindow struct {
	startTime time.Time
	slots     []*testSlot
	sync.Mutex
}

// wledBench keeps the last state documents posted by the bridge
type wledBench struct {
	on         bool
	brightness int
	pixels     int
	lit        int
	sync.Mutex
}

var (
	// create Logger interface
	logW = logxi.NewLogger(logxi.NewConcurrentWriter(os.Stdout), "volumiwled-simulator")

	testSchedule = testWindow{
		startTime: time.Now().Round(time.Second),
		slots:     []*testSlot{},
	}

	bench = &wledBench{}

	// Carries a scenario directory to switch to and load immediately
	forcedLoad = make(chan string, 1)
)

func main() {

	flag.Parse()

	if _, err := filepath.Abs(*scenarioPath); err != nil {
		logW.Error(err.Error())
		os.Exit(-1)
	}

	if err := loadTest(*scenarioPath); err != nil {
		logW.Warn(fmt.Sprintf("could not load test scenario from %s due to %s", *scenarioPath, err.Error()), "error", err)
	}

	go auditWindow(*scenarioPath)

	http.HandleFunc("/api/v1/getState", serveState)
	http.HandleFunc("/json/state", serveWLED)
	http.HandleFunc("/configure/", serveConfigure)

	if err := http.ListenAndServe(*listen, nil); err != nil {
		logW.Warn(err.Error())
	}
}

// loadTest examines the scenario directory for the documents that will be
// served and loads them into the testSchedule
//
func loadTest(scenario string) (err error) {
	files, err := ioutil.ReadDir(scenario)
	if err != nil {
		return err
	}

	slots := []*testSlot{}
	for _, f := range files {
		// Drop empty and non numeric files they are not of any use
		if f.IsDir() || f.Size() == 0 {
			continue
		}
		second, errGo := strconv.Atoi(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		if errGo != nil {
			continue
		}
		body, errGo := ioutil.ReadFile(filepath.Join(scenario, f.Name()))
		if errGo != nil {
			logW.Warn("unreadable scenario file", "file", f.Name(), "error", errGo)
			continue
		}
		slots = append(slots, &testSlot{secondSlot: second, body: body})
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].secondSlot < slots[j].secondSlot
	})

	testSchedule.Lock()
	testSchedule.startTime = time.Now().Round(time.Second)
	testSchedule.slots = slots
	testSchedule.Unlock()

	logW.Debug(fmt.Sprintf("loaded scenario %s with %d documents", scenario, len(slots)))
	return nil
}

// getSlot returns the document current at this moment, finished is true once
// the last document has been current for more than a second
func getSlot() (body []byte, finished bool) {
	testSchedule.Lock()
	defer testSchedule.Unlock()

	if len(testSchedule.slots) == 0 {
		return []byte(`{"status":"stop"}`), false
	}

	second := int(time.Since(testSchedule.startTime).Seconds() * float64(*scale))
	slot := sort.Search(len(testSchedule.slots), func(i int) bool { return testSchedule.slots[i].secondSlot > second }) - 1
	if slot < 0 {
		slot = 0
	}

	last := testSchedule.slots[len(testSchedule.slots)-1]
	return testSchedule.slots[slot].body, second > last.secondSlot+1
}

// auditWindow owns the current scenario directory, handlers change it only
// by sending a new one over forcedLoad
func auditWindow(scenario string) {
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case scenario = <-forcedLoad:
			logW.Debug(fmt.Sprintf("forced load of %s occurring", scenario))
			loadTest(scenario)

		case <-tick.C:
			if _, finished := getSlot(); finished && *loop {
				loadTest(scenario)
			}
		}
	}
}

func serveState(w http.ResponseWriter, r *http.Request) {
	body, _ := getSlot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func serveWLED(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		bench.Lock()
		fmt.Fprintf(w, `{"on":%t,"bri":%d}`, bench.on, bench.brightness)
		bench.Unlock()
		return
	}

	state := struct {
		On         *bool `json:"on"`
		Brightness *int  `json:"bri"`
		Segments   []struct {
			LEDs []json.RawMessage `json:"i"`
			Col  [][]int           `json:"col"`
		} `json:"seg"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bench.Lock()
	defer bench.Unlock()

	if state.On != nil {
		bench.on = *state.On
	}
	if state.Brightness != nil {
		bench.brightness = *state.Brightness
	}
	for _, seg := range state.Segments {
		if len(seg.LEDs) == 0 {
			bench.lit = 0
			continue
		}
		// Entries alternate between the index and the color
		bench.pixels = len(seg.LEDs) / 2
		bench.lit = 0
		for i := 1; i < len(seg.LEDs); i += 2 {
			if string(seg.LEDs[i]) != "[0,0,0]" {
				bench.lit++
			}
		}
	}

	logW.Info("wled", "on", bench.on, "bri", bench.brightness, "lit", bench.lit, "pixels", bench.pixels)
	fmt.Fprint(w, `{"success":true}`)
}

func serveConfigure(w http.ResponseWriter, r *http.Request) {

	if !*remote {
		http.NotFound(w, r)
		return
	}

	scenario := strings.TrimPrefix(r.URL.Path, "/configure")
	if !filepath.IsAbs(scenario) {
		http.Error(w, "configure paths must be absolute", 404)
		return
	}

	select {
	case forcedLoad <- scenario:
	case <-time.After(3 * time.Second):
		http.Error(w, "configure path could not be applied, the simulator is busy", 503)
	}
}
