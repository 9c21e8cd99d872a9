// Package testutil provides utilities for testing.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/randalmurphal/visualflow/napkin"
)

// GenerationScript configures the responses of a fake generation API.
type GenerationScript struct {
	// SubmitID is the request ID returned by submission.
	SubmitID string

	// SubmitStatus is the initial status. Defaults to pending.
	SubmitStatus napkin.Status

	// Statuses are returned by successive status polls, in order; the
	// last entry repeats once the script is exhausted.
	Statuses []napkin.StatusResponse

	// Files maps download paths (e.g., "/files/out.svg") to content.
	Files map[string][]byte
}

// GenerationServer is a scripted fake of the generation API.
type GenerationServer struct {
	*httptest.Server

	mu            sync.Mutex
	script        GenerationScript
	statusIndex   int
	submitCalls   int
	statusCalls   int
	downloadCalls int
}

// NewGenerationServer starts a fake generation API serving the script.
// The server is closed automatically when the test finishes.
func NewGenerationServer(t *testing.T, script GenerationScript) *GenerationServer {
	t.Helper()

	if script.SubmitID == "" {
		script.SubmitID = "req-test"
	}
	if script.SubmitStatus == "" {
		script.SubmitStatus = napkin.StatusPending
	}

	s := &GenerationServer{script: script}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *GenerationServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/visual":
		s.submitCalls++
		writeJSON(w, map[string]any{
			"id":     s.script.SubmitID,
			"status": s.script.SubmitStatus,
		})

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/status"):
		s.statusCalls++
		if len(s.script.Statuses) == 0 {
			http.Error(w, `{"error":"no scripted statuses"}`, http.StatusInternalServerError)
			return
		}
		snapshot := s.script.Statuses[s.statusIndex]
		if s.statusIndex < len(s.script.Statuses)-1 {
			s.statusIndex++
		}
		writeJSON(w, snapshot)

	case r.Method == http.MethodGet && r.URL.Path == "/v1/styles":
		writeJSON(w, map[string]any{"styles": []any{}})

	default:
		if content, ok := s.script.Files[r.URL.Path]; ok {
			s.downloadCalls++
			w.Write(content)
			return
		}
		http.NotFound(w, r)
	}
}

// SetStatuses replaces the scripted status sequence. Useful when the
// snapshots must reference download URLs that are only known once the
// server is listening.
func (s *GenerationServer) SetStatuses(statuses []napkin.StatusResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script.Statuses = statuses
	s.statusIndex = 0
}

// SubmitCalls returns how many submissions the server has received.
func (s *GenerationServer) SubmitCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitCalls
}

// StatusCalls returns how many status polls the server has received.
func (s *GenerationServer) StatusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

// DownloadCalls returns how many file downloads the server has served.
func (s *GenerationServer) DownloadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloadCalls
}

// FileURL returns the absolute download URL for a scripted file path.
func (s *GenerationServer) FileURL(path string) string {
	return s.URL + path
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
