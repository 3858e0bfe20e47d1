package volumiwled

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petjek/VolumiWLED/model"
)

func volumioServer(t *testing.T, handler http.HandlerFunc) (vol *Volumio, closer func()) {
	srv := httptest.NewServer(handler)
	u, errGo := url.Parse(srv.URL + "/api/v1/getState")
	require.NoError(t, errGo)
	return NewVolumioURL(*u, 200*time.Millisecond), srv.Close
}

func TestVolumioFetchState(t *testing.T) {
	vol, closer := volumioServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/getState", r.URL.Path)
		fmt.Fprint(w, `{"status":"play","seek":50000,"duration":200,"title":"Blue in Green"}`)
	})
	defer closer()

	state, err := vol.FetchState()
	require.Nil(t, err)
	assert.Equal(t, model.StatusPlaying, state.Status)
	assert.InDelta(t, 50.0, state.Elapsed, 1e-9)
	assert.InDelta(t, 200.0, state.Duration, 1e-9)
	assert.Equal(t, "Blue in Green", state.Track.Title)
}

func TestVolumioHTTPError(t *testing.T) {
	vol, closer := volumioServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})
	defer closer()

	_, err := vol.FetchState()
	assert.NotNil(t, err)
}

func TestVolumioMalformed(t *testing.T) {
	vol, closer := volumioServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":`)
	})
	defer closer()

	_, err := vol.FetchState()
	assert.NotNil(t, err)
}

func TestVolumioTimeout(t *testing.T) {
	releaseC := make(chan struct{})
	vol, closer := volumioServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-releaseC:
		case <-time.After(2 * time.Second):
		}
	})
	defer closer()
	defer close(releaseC)

	start := time.Now()
	_, err := vol.FetchState()
	assert.NotNil(t, err)
	assert.True(t, time.Since(start) < time.Second)
}

func TestVolumioUnknownScheme(t *testing.T) {
	vol := NewVolumioURL(url.URL{Scheme: "serial", Host: "ttyUSB0"}, time.Second)
	_, err := vol.FetchState()
	assert.NotNil(t, err)
}

func TestNewVolumioURL(t *testing.T) {
	assert.Equal(t, "http://volumio.local:3000/api/v1/getState", NewVolumio("volumio.local", 3000, time.Second).URL())
}
