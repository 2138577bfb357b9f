package restrouter_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/restrouter"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := restrouter.Errorf(http.StatusConflict, "item %d exists", 7)
	assert.EqualError(t, err, "item 7 exists")

	var httpErr *restrouter.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		expect int
	}{
		"http error": {
			err:    restrouter.Error(http.StatusForbidden, "forbidden"),
			expect: http.StatusForbidden,
		},
		"wrapped http error": {
			err:    fmt.Errorf("loading: %w", restrouter.Error(http.StatusNotFound, "gone")),
			expect: http.StatusNotFound,
		},
		"problem detail": {
			err:    &restrouter.ProblemDetail{Status: http.StatusTeapot, Title: "teapot"},
			expect: http.StatusTeapot,
		},
		"invalid accept": {
			err:    &restrouter.NegotiationError{Kind: restrouter.InvalidAcceptHeader},
			expect: http.StatusBadRequest,
		},
		"panic": {
			err:    &restrouter.PanicError{Value: "boom"},
			expect: http.StatusInternalServerError,
		},
		"plain error": {
			err:    errors.New("plain error"),
			expect: http.StatusInternalServerError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, restrouter.ErrorStatus(tc.err))
		})
	}
}

func TestProblemDetail_Error(t *testing.T) {
	t.Parallel()

	assert.EqualError(t, &restrouter.ProblemDetail{Title: "Bad", Detail: "missing name"}, "missing name")
	assert.EqualError(t, &restrouter.ProblemDetail{Title: "Bad"}, "Bad")
}

func TestNegotiationKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invalid_accept_header", restrouter.InvalidAcceptHeader.String())
	assert.Equal(t, "cannot_serialize", restrouter.CannotSerialize.String())
	assert.Equal(t, "unknown", restrouter.NegotiationKind(0).String())
}
