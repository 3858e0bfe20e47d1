package model

// This module defines implementation neutral player state information
// data structures along with the Volumio specific wire format they are
// converted from

import (
	"encoding/json"
	"strings"
)

// Status is the playback status of the player
type Status string

const (
	StatusPlaying Status = "play"
	StatusPaused  Status = "pause"
	StatusStopped Status = "stop"
)

// Track identifies what the player has loaded, it is only ever used for
// logging and change detection and never influences rendering
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	URI    string `json:"uri"`
}

// PlayerState is a snapshot of the player taken once per poll
type PlayerState struct {
	Status   Status  `json:"status"`
	Elapsed  float64 `json:"elapsed"`  // Seconds
	Duration float64 `json:"duration"` // Seconds, 0 when unknown
	Track    Track   `json:"track"`
}

// DurationValid is true when the duration can be used as a divisor
func (state *PlayerState) DurationValid() bool {
	return state.Duration > 0
}

// VolumioState is the subset of the /api/v1/getState response that is used.
// Seek is reported in milliseconds and duration in seconds.
type VolumioState struct {
	Status   string  `json:"status"`
	Seek     float64 `json:"seek"`
	Duration float64 `json:"duration"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	URI      string  `json:"uri"`
	Service  string  `json:"service"`
	Volume   int     `json:"volume"`
}

// ParseVolumio decodes a getState response body into the canonical format
func ParseVolumio(body []byte) (state *PlayerState, errGo error) {
	vs := &VolumioState{}
	if errGo = json.Unmarshal(body, vs); errGo != nil {
		return nil, errGo
	}
	return vs.PlayerState(), nil
}

// PlayerState converts the Volumio specific format into the canonical
// format used by the renderers
func (vs *VolumioState) PlayerState() (state *PlayerState) {
	state = &PlayerState{
		Status:   normalizeStatus(vs.Status),
		Elapsed:  vs.Seek / 1000.0,
		Duration: vs.Duration,
		Track: Track{
			Title:  vs.Title,
			Artist: vs.Artist,
			Album:  vs.Album,
			URI:    vs.URI,
		},
	}
	if state.Elapsed < 0 {
		state.Elapsed = 0
	}
	if state.Duration < 0 {
		state.Duration = 0
	}
	return state
}

// normalizeStatus treats a missing or unrecognized status as stopped
func normalizeStatus(status string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(status))) {
	case StatusPlaying:
		return StatusPlaying
	case StatusPaused:
		return StatusPaused
	default:
		return StatusStopped
	}
}
