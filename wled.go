package volumiwled

// This module drives a WLED controller using its JSON API.  Every command is
// a POST of a partial state document to /json/state.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

type WLED struct {
	url    url.URL
	client *http.Client
}

type wledState struct {
	On         *bool         `json:"on,omitempty"`
	Brightness *int          `json:"bri,omitempty"`
	Segments   []wledSegment `json:"seg,omitempty"`
}

type wledSegment struct {
	ID     *int          `json:"id,omitempty"`
	Start  *int          `json:"start,omitempty"`
	Stop   *int          `json:"stop,omitempty"`
	Colors [][3]uint8    `json:"col,omitempty"`
	LEDs   []interface{} `json:"i,omitempty"`
}

// NewWLED creates a sink for the WLED controller at host, which may include
// a port
func NewWLED(host string, timeout time.Duration) (wled *WLED) {
	return &WLED{
		url: url.URL{
			Scheme: "http",
			Host:   host,
			Path:   "/json/state",
		},
		client: &http.Client{Timeout: timeout},
	}
}

func (wled *WLED) SetPower(on bool, brightness int) (err errors.Error) {
	state := &wledState{On: &on}
	if brightness != KeepBrightness {
		bri := int(clampChannel(brightness))
		state.Brightness = &bri
	}
	return wled.post(state)
}

func (wled *WLED) SetFrame(frame Frame) (err errors.Error) {
	// WLED expects the index and color as consecutive array elements,
	// [0, [255, 0, 0], 1, [0, 255, 0]]
	leds := make([]interface{}, 0, 2*len(frame))
	for i, c := range frame {
		leds = append(leds, i, [3]uint8{c.R, c.G, c.B})
	}
	return wled.post(&wledState{
		Segments: []wledSegment{{LEDs: leds}},
	})
}

// Clear sets the whole of the first segment to black
func (wled *WLED) Clear(ledCount int) (err errors.Error) {
	id, start, stop := 0, 0, ledCount
	return wled.post(&wledState{
		Segments: []wledSegment{{
			ID:     &id,
			Start:  &start,
			Stop:   &stop,
			Colors: [][3]uint8{{0, 0, 0}},
		}},
	})
}

func (wled *WLED) post(state *wledState) (err errors.Error) {
	payload, errGo := json.Marshal(state)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	resp, errGo := wled.client.Post(wled.url.String(), "application/json", bytes.NewReader(payload))
	if errGo != nil {
		return errors.Wrap(errGo).With("url", wled.url.String()).With("stack", stack.Trace().TrimRuntime())
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errGo = fmt.Errorf("unexpected response %s", resp.Status)
		return errors.Wrap(errGo).With("url", wled.url.String()).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}
