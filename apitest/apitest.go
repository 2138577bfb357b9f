// Package apitest provides test helpers and collaborator spies for
// restrouter dispatchers.
package apitest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bjaus/restrouter"
)

// Client wraps an httptest.Server for end-to-end tests.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h and closes it when the test ends.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response is a fully read HTTP response.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Get sends a GET request. Without accept the request carries no Accept
// header at all; otherwise each value becomes an Accept header line.
func (c *Client) Get(t testing.TB, path string, accept ...string) *Response {
	t.Helper()
	h := make(http.Header)
	for _, a := range accept {
		h.Add("Accept", a)
	}
	return c.Do(t, http.MethodGet, path, h)
}

// Do sends a request with the given headers and no body.
func (c *Client) Do(t testing.TB, method, path string, h http.Header) *Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	for k, vs := range h {
		req.Header[k] = vs
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: read body: %v", err)
	}
	return &Response{Status: resp.StatusCode, Headers: resp.Header, Body: body}
}

// SerializerSpy is a restrouter.Serializer that records every value it is
// asked to serialize and writes Output (or fails with Err).
type SerializerSpy struct {
	Type   string
	Output string
	Err    error

	mu     sync.Mutex
	values []any
}

// MediaType implements restrouter.Serializer.
func (s *SerializerSpy) MediaType() string { return s.Type }

// Serialize implements restrouter.Serializer.
func (s *SerializerSpy) Serialize(w io.Writer, v any) error {
	s.mu.Lock()
	s.values = append(s.values, v)
	s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	_, err := io.WriteString(w, s.Output)
	return err
}

// Values returns the values serialized so far.
func (s *SerializerSpy) Values() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.values...)
}

// Calls returns how many times Serialize was called.
func (s *SerializerSpy) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// ReportedError is one call to ReporterSpy.HandleError.
type ReportedError struct {
	Err    error
	Custom bool
}

// ReporterSpy is a restrouter.ErrorReporter recording each reported error.
// It answers with the error's status code and message.
type ReporterSpy struct {
	mu    sync.Mutex
	calls []ReportedError
}

var _ restrouter.ErrorReporter = (*ReporterSpy)(nil)

// HandleError implements restrouter.ErrorReporter.
func (s *ReporterSpy) HandleError(w http.ResponseWriter, _ *http.Request, err error, custom bool) {
	s.mu.Lock()
	s.calls = append(s.calls, ReportedError{Err: err, Custom: custom})
	s.mu.Unlock()

	w.WriteHeader(restrouter.ErrorStatus(err))
	fmt.Fprint(w, err.Error())
}

// Calls returns the reported errors in order.
func (s *ReporterSpy) Calls() []ReportedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ReportedError(nil), s.calls...)
}

// Registry is a restrouter.SerializerRegistry over fixed serializers. Unlike
// restrouter.Registry it can be built inconsistent, with supported types
// that have no serializer.
type Registry struct {
	Supported   []string
	Default     string
	Serializers map[string]restrouter.Serializer
}

// SupportedMediaTypes implements restrouter.SerializerRegistry.
func (r *Registry) SupportedMediaTypes() []string { return r.Supported }

// DefaultContentType implements restrouter.SerializerRegistry.
func (r *Registry) DefaultContentType() string { return r.Default }

// Serializer implements restrouter.SerializerRegistry.
func (r *Registry) Serializer(mediaType string) (restrouter.Serializer, bool) {
	s, ok := r.Serializers[mediaType]
	return s, ok
}
