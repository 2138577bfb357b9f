package main

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/restrouter"
	"github.com/bjaus/restrouter/apitest"
)

func newTestClient(t *testing.T) *apitest.Client {
	t.Helper()

	reg, err := restrouter.NewRegistry(
		restrouter.WithSerializer(restrouter.YAML()),
		restrouter.WithSerializer(restrouter.Text()),
	)
	require.NoError(t, err)

	res := restrouter.NewMuxResolver()
	registerRoutes(res, newCatalogue())

	d := restrouter.NewDispatcher(res, reg, restrouter.WithLogger(slog.New(slog.DiscardHandler)))
	return apitest.NewClient(t, d)
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	tests := map[string]struct {
		path     string
		accept   []string
		wantCode int
		wantType string
		wantBody string
	}{
		"item defaults to json": {
			path:     "/items/1",
			wantCode: http.StatusOK,
			wantType: "application/json",
			wantBody: `"name":"kettle"`,
		},
		"item as yaml": {
			path:     "/items/2",
			accept:   []string{"application/yaml"},
			wantCode: http.StatusOK,
			wantType: "application/yaml",
			wantBody: "name: teapot",
		},
		"item refuses xml": {
			path:     "/items/1",
			accept:   []string{"application/xml"},
			wantCode: http.StatusNotAcceptable,
			wantType: "application/json",
			wantBody: `"status":406`,
		},
		"missing item is a fault": {
			path:     "/items/9",
			wantCode: http.StatusNotFound,
		},
		"non numeric id does not match": {
			path:     "/items/abc",
			wantCode: http.StatusNotFound,
		},
		"list as xml": {
			path:     "/items",
			accept:   []string{"application/xml"},
			wantCode: http.StatusOK,
			wantType: "application/xml",
			wantBody: "<name>mug</name>",
		},
		"report without accept is ambiguous": {
			path:     "/report",
			wantCode: http.StatusNotAcceptable,
		},
		"report as text": {
			path:     "/report",
			accept:   []string{"text/plain"},
			wantCode: http.StatusOK,
			wantType: "text/plain",
			wantBody: "3 items in stock",
		},
		"export ignores accept": {
			path:     "/export",
			accept:   []string{"not a media type"},
			wantCode: http.StatusOK,
			wantType: "text/csv",
			wantBody: "2,teapot,18.00",
		},
		"broken route": {
			path:     "/broken",
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp := c.Get(t, tc.path, tc.accept...)

			assert.Equal(t, tc.wantCode, resp.Status)
			if tc.wantType != "" {
				assert.Equal(t, tc.wantType, resp.Headers.Get("Content-Type"))
			}
			if tc.wantBody != "" {
				assert.Contains(t, string(resp.Body), tc.wantBody)
			}
		})
	}
}
