package restrouter_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/restrouter"
	"github.com/bjaus/restrouter/apitest"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		handler    http.HandlerFunc
		wantSubstr []string
	}{
		"request is logged": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantSubstr: []string{"msg=request", "method=GET", "path=/test-log", "status=200"},
		},
		"status code is captured": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			wantSubstr: []string{"status=201"},
		},
		"body size is captured": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("hello world response")) //nolint:errcheck
			},
			wantSubstr: []string{"size=20"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			c := apitest.NewClient(t, restrouter.Logger(logger)(tc.handler))
			c.Get(t, "/test-log")

			for _, s := range tc.wantSubstr {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestLogger_negotiated_content_type(t *testing.T) {
	t.Parallel()

	reg, err := restrouter.NewRegistry()
	require.NoError(t, err)

	res := restrouter.NewMuxResolver()
	res.Handle(http.MethodGet, "/x", restrouter.NewRoute(restrouter.HandlerFunc(func(http.ResponseWriter, *http.Request) (any, error) {
		return resultBody{Message: "x"}, nil
	})))

	var buf bytes.Buffer
	h := restrouter.Chain(restrouter.NewDispatcher(res, reg),
		restrouter.RequestID(),
		restrouter.Logger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	c := apitest.NewClient(t, h)
	resp := c.Get(t, "/x", "application/xml")
	assert.Equal(t, http.StatusOK, resp.Status)

	assert.Contains(t, buf.String(), "content_type=application/xml")
	assert.Contains(t, buf.String(), "request_id=")
}

func TestLogger_unwrap_response_controller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := restrouter.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = http.NewResponseController(w).Flush() //nolint:errcheck
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unwrap-test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Contains(t, buf.String(), "request")
}
