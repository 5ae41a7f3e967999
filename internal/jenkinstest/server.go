// Package jenkinstest provides a fake Jenkins controller for tests.
package jenkinstest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// APIKey is the metrics key the fixtures are served under.
const APIKey = "test-key"

// MockServer is a fake Jenkins serving canned responses per URL path.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse
	requests  map[string]int
	lastAuth  string
	mu        sync.Mutex
}

// MockResponse defines a canned response.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
}

// NewMockServer starts a fake Jenkins. Unknown paths return 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
		requests:  make(map[string]int),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the fake controller's root URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets the response for an exact URL path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if response.StatusCode == 0 {
		response.StatusCode = http.StatusOK
	}
	ms.responses[path] = response
}

// SetJSON serves body with status 200 at path.
func (ms *MockServer) SetJSON(path string, body interface{}) {
	ms.SetResponse(path, MockResponse{StatusCode: http.StatusOK, Body: body})
}

// RequestCount returns how many requests hit path.
func (ms *MockServer) RequestCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requests[path]
}

// LastAuthorization returns the Authorization header of the latest request.
func (ms *MockServer) LastAuthorization() string {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.lastAuth
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.requests[r.URL.Path]++
	ms.lastAuth = r.Header.Get("Authorization")
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.StatusCode)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}
