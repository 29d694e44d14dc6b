//go:build integration_test

package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// fakeAgent serves the subset of the agent api the coach uses.
type fakeAgent struct {
	mu        sync.Mutex
	runs      int
	sseFrames []string
}

func newFakeAgent(sseFrames ...string) (*fakeAgent, *httptest.Server) {
	agent := &fakeAgent{sseFrames: sseFrames}

	r := mux.NewRouter()
	r.HandleFunc("/list-apps", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["root_agent"]`))
	}).Methods("GET")
	r.HandleFunc("/apps/{app}/users/{user}/sessions/{session}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      vars["session"],
			"appName": vars["app"],
			"userId":  vars["user"],
			"state":   map[string]any{},
		})
	}).Methods("POST")
	r.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		agent.mu.Lock()
		agent.runs++
		agent.mu.Unlock()
		_, _ = w.Write([]byte(`[{"author":"root_agent","content":{"role":"model","parts":[{"text":"Profile saved."}]}}]`))
	}).Methods("POST")
	r.HandleFunc("/run_sse", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range agent.sseFrames {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}).Methods("POST")

	return agent, httptest.NewServer(r)
}

func (a *fakeAgent) runCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runs
}
