package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeConfigureHandsOffPath(t *testing.T) {
	*remote = true
	defer func() { *remote = false }()

	rec := httptest.NewRecorder()
	serveConfigure(rec, httptest.NewRequest(http.MethodGet, "/configure/srv/scenarios/vinyl", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case scenario := <-forcedLoad:
		assert.Equal(t, "/srv/scenarios/vinyl", scenario)
	default:
		t.Fatal("scenario not handed to the audit loop")
	}
	assert.Equal(t, "./", *scenarioPath)
}

func TestServeConfigureRejectsRelative(t *testing.T) {
	*remote = true
	defer func() { *remote = false }()

	rec := httptest.NewRecorder()
	serveConfigure(rec, httptest.NewRequest(http.MethodGet, "/configurescenarios", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	select {
	case scenario := <-forcedLoad:
		t.Fatalf("relative path %s was forwarded", scenario)
	default:
	}
}

func TestServeConfigureDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	serveConfigure(rec, httptest.NewRequest(http.MethodGet, "/configure/srv", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
