package restrouter

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

// RouteResolver finds the route matching a request.
type RouteResolver interface {
	FindBestMatch(w http.ResponseWriter, r *http.Request) (Route, bool)
}

// ResolverFunc adapts a function to a RouteResolver.
type ResolverFunc func(w http.ResponseWriter, r *http.Request) (Route, bool)

// FindBestMatch calls f(w, r).
func (f ResolverFunc) FindBestMatch(w http.ResponseWriter, r *http.Request) (Route, bool) {
	return f(w, r)
}

// MuxResolver resolves routes with gorilla/mux path templates. Path
// variables of the match are visible to the route's handler through Vars.
type MuxResolver struct {
	mux *mux.Router

	mu sync.RWMutex
}

// NewMuxResolver returns an empty resolver.
func NewMuxResolver() *MuxResolver {
	return &MuxResolver{mux: mux.NewRouter()}
}

// Handle registers rt for method and a gorilla/mux path template such as
// "/items/{id}". An empty method matches every method.
func (m *MuxResolver) Handle(method, path string, rt Route) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mr := m.mux.Path(path).Handler(muxEntry{route: rt})
	if method != "" {
		mr.Methods(method)
	}
}

// FindBestMatch returns the first registered route matching r's method and path.
func (m *MuxResolver) FindBestMatch(_ http.ResponseWriter, r *http.Request) (Route, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var match mux.RouteMatch
	if !m.mux.Match(r, &match) || match.MatchErr != nil {
		return nil, false
	}
	entry, ok := match.Handler.(muxEntry)
	if !ok {
		return nil, false
	}
	rt := entry.route
	if len(match.Vars) == 0 {
		return rt, true
	}
	return varsRoute{Route: rt, vars: match.Vars}, true
}

// Vars returns the path variables of the route matched for r.
func Vars(r *http.Request) map[string]string {
	return mux.Vars(r)
}

// muxEntry carries a Route through gorilla/mux. It is matched, never served.
type muxEntry struct {
	route Route
}

func (muxEntry) ServeHTTP(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }

// varsRoute hands the matched path variables to the wrapped route's handler.
type varsRoute struct {
	Route
	vars map[string]string
}

func (v varsRoute) Handler() Handler {
	next := v.Route.Handler()
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request) (any, error) {
		return next.Process(w, mux.SetURLVars(r, v.vars))
	})
}
