package testsupport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Request is a request captured by a fake New Relic server.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// NewRelicServer fakes both New Relic APIs. Every request succeeds unless a
// response is registered for its path with Respond.
type NewRelicServer struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []Request
	responses map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

// NewNewRelicServer starts a fake server that is closed when the test ends.
func NewNewRelicServer(t testing.TB) *NewRelicServer {
	t.Helper()

	s := &NewRelicServer{responses: make(map[string]fakeResponse)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Respond registers the status and body returned for path.
func (s *NewRelicServer) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = fakeResponse{status: status, body: body}
}

// Requests returns the captured requests in arrival order.
func (s *NewRelicServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *NewRelicServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: string(body)})
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		resp = fakeResponse{status: http.StatusCreated, body: `{"deployment":{"id":1}}`}
		if strings.HasSuffix(r.URL.Path, "/graphql") {
			resp = fakeResponse{status: http.StatusOK, body: `{"data":{"changeTrackingCreateDeployment":{"deploymentId":"d1"}}}`}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}
