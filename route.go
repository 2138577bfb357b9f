package restrouter

import "net/http"

// Handler processes a matched request and yields one result value or one
// fault. Custom routes write the response themselves and their value is
// ignored.
type Handler interface {
	Process(w http.ResponseWriter, r *http.Request) (any, error)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) (any, error)

// Process calls f(w, r).
func (f HandlerFunc) Process(w http.ResponseWriter, r *http.Request) (any, error) {
	return f(w, r)
}

// RawHandlerFunc adapts a plain http.HandlerFunc for custom routes. It never
// returns a value or fault.
func RawHandlerFunc(fn http.HandlerFunc) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) (any, error) {
		fn(w, r)
		return nil, nil
	})
}

// Route is what a RouteResolver hands to the Dispatcher.
type Route interface {
	Handler() Handler
	Produces() Produces
	Custom() bool
}

// RouteOption configures a route built by NewRoute.
type RouteOption func(*route)

// WithProduces declares the media types the route can emit, in preference order.
func WithProduces(types ...string) RouteOption {
	return func(r *route) {
		r.produces = ProducesOf(types...)
	}
}

// AsCustom marks the route as owning its response. Negotiation and
// serialization are skipped.
func AsCustom() RouteOption {
	return func(r *route) {
		r.custom = true
	}
}

type route struct {
	handler  Handler
	produces Produces
	custom   bool
}

// NewRoute returns an immutable Route for h.
func NewRoute(h Handler, opts ...RouteOption) Route {
	r := &route{handler: h}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *route) Handler() Handler   { return r.handler }
func (r *route) Produces() Produces { return r.produces }
func (r *route) Custom() bool       { return r.custom }
