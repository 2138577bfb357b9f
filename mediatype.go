package restrouter

import (
	"errors"
	"mime"
	"net/http"
	"slices"
	"strings"
)

// Accept is the media type a request asked for, derived once per request
// from its Accept header.
type Accept struct {
	mediaType string
	present   bool
}

// AcceptAny is an absent Accept directive.
var AcceptAny = Accept{}

// ParseAccept reads the Accept header. A request without an Accept header
// yields AcceptAny. A header that is not a single type/subtype media type
// (parameters are allowed and ignored) is an InvalidAcceptHeader error.
func ParseAccept(h http.Header) (Accept, error) {
	values := h.Values("Accept")
	if len(values) == 0 {
		return AcceptAny, nil
	}
	if len(values) > 1 {
		return AcceptAny, &NegotiationError{Kind: InvalidAcceptHeader, Accept: strings.Join(values, ", ")}
	}
	return AcceptOf(values[0])
}

// AcceptOf parses a single Accept value.
func AcceptOf(value string) (Accept, error) {
	mt, ok := parseMediaType(value)
	if !ok {
		return AcceptAny, &NegotiationError{Kind: InvalidAcceptHeader, Accept: value}
	}
	return Accept{mediaType: mt, present: true}, nil
}

// MediaType returns the requested media type and whether one was requested.
func (a Accept) MediaType() (string, bool) { return a.mediaType, a.present }

func (a Accept) String() string {
	if !a.present {
		return ""
	}
	return a.mediaType
}

// parseMediaType lowercases v and strips parameters. Only the type/subtype
// token must be well formed; a broken parameter such as "; q" is dropped.
// mime.ParseMediaType accepts bare dispositions such as "inline", so the
// slash is checked here.
func parseMediaType(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", false
	}
	typ, sub, ok := strings.Cut(mt, "/")
	if !ok || typ == "" || sub == "" {
		return "", false
	}
	return mt, true
}

// Produces is the ordered set of media types a route declares it emits.
// The zero value declares nothing and leaves the route unconstrained.
type Produces struct {
	types    []string
	declared bool
}

// ProducesAny is the unconstrained Produces set.
var ProducesAny = Produces{}

// ProducesOf declares the given media types in order, dropping duplicates.
// Calling it with no types declares an empty set, which nothing satisfies.
func ProducesOf(types ...string) Produces {
	p := Produces{types: make([]string, 0, len(types)), declared: true}
	for _, t := range types {
		t = normalizeMediaType(t)
		if !slices.Contains(p.types, t) {
			p.types = append(p.types, t)
		}
	}
	return p
}

// Declared reports whether the route constrains its output types.
func (p Produces) Declared() bool { return p.declared }

// Types returns a copy of the declared media types in declaration order.
func (p Produces) Types() []string { return slices.Clone(p.types) }

// Contains reports whether mediaType is declared.
func (p Produces) Contains(mediaType string) bool { return slices.Contains(p.types, mediaType) }

// Allows reports whether mediaType satisfies p. Undeclared sets allow anything.
func (p Produces) Allows(mediaType string) bool {
	return !p.declared || p.Contains(mediaType)
}

func normalizeMediaType(t string) string {
	if mt, ok := parseMediaType(t); ok {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(t))
}
