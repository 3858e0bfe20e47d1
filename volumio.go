package volumiwled

// This module implements the communications with the Volumio REST API which
// is polled for the state of the player

import (
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/petjek/VolumiWLED/model"
)

type Volumio struct {
	url    url.URL
	client *http.Client
}

// NewVolumio creates a state source for the player at host:port, every
// request is abandoned after timeout
func NewVolumio(host string, port int, timeout time.Duration) (vol *Volumio) {
	return &Volumio{
		url: url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   "/api/v1/getState",
		},
		client: &http.Client{Timeout: timeout},
	}
}

// NewVolumioURL is used when the full getState URL is known, for example
// when pointing at the simulator
func NewVolumioURL(u url.URL, timeout time.Duration) (vol *Volumio) {
	return &Volumio{
		url:    u,
		client: &http.Client{Timeout: timeout},
	}
}

func (vol *Volumio) URL() string {
	return vol.url.String()
}

// FetchState extracts the player state from Volumio
//
func (vol *Volumio) FetchState() (state *model.PlayerState, err errors.Error) {

	body := []byte{}

	switch vol.url.Scheme {
	case "http", "https":
		resp, errGo := vol.client.Get(vol.url.String())
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("url", vol.url.String()).With("stack", stack.Trace().TrimRuntime())
		}

		body, errGo = ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("url", vol.url.String()).With("stack", stack.Trace().TrimRuntime())
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			errGo = fmt.Errorf("unexpected response %s", resp.Status)
			return nil, errors.Wrap(errGo).With("url", vol.url.String()).With("stack", stack.Trace().TrimRuntime())
		}

	default:
		errGo := fmt.Errorf("Unknown scheme %s for the volumio URI", vol.url.Scheme)
		return nil, errors.Wrap(errGo).With("url", vol.url.String()).With("stack", stack.Trace().TrimRuntime())
	}

	// Parse into the volumio specific format and then convert to
	// the canonical format used by the renderers
	//
	state, errGo := model.ParseVolumio(body)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("url", vol.url.String()).With("body", string(body)).With("stack", stack.Trace().TrimRuntime())
	}
	return state, nil
}
