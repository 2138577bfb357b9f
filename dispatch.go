package restrouter

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// Dispatcher runs matched routes and negotiates their response format.
// It implements http.Handler.
type Dispatcher struct {
	resolver RouteResolver
	registry SerializerRegistry
	reporter ErrorReporter
	notFound http.Handler
	logger   *slog.Logger
	metrics  *Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithErrorReporter replaces the default ProblemReporter.
func WithErrorReporter(rep ErrorReporter) DispatcherOption {
	return func(d *Dispatcher) {
		d.reporter = rep
	}
}

// WithLogger sets the logger for negotiation failures and handler faults.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithMetrics records negotiations and dispatches in m.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithNotFound sets the handler ServeHTTP uses when no route matches.
// Defaults to http.NotFound.
func WithNotFound(h http.Handler) DispatcherOption {
	return func(d *Dispatcher) {
		d.notFound = h
	}
}

// NewDispatcher returns a Dispatcher resolving routes with resolver and
// serializing results with the serializers of reg.
func NewDispatcher(resolver RouteResolver, reg SerializerRegistry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		resolver: resolver,
		registry: reg,
		notFound: http.NotFoundHandler(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.reporter == nil {
		d.reporter = &ProblemReporter{Registry: reg, Logger: d.logger}
	}
	return d
}

// result is the single value or fault of one handler invocation.
type result struct {
	value any
	err   error
}

// Handle dispatches one request. It returns ErrNoRoute when the resolver
// has no match, and the handler's own error, unchanged, when the handler
// fails. Negotiation failures are passed to the ErrorReporter and Handle
// returns nil.
func (d *Dispatcher) Handle(w http.ResponseWriter, r *http.Request) error {
	rt, ok := d.resolver.FindBestMatch(w, r)
	if !ok {
		return ErrNoRoute
	}
	if rt.Custom() {
		return d.handleCustom(w, r, rt)
	}
	return d.handleNegotiated(w, r, rt)
}

func (d *Dispatcher) handleCustom(w http.ResponseWriter, r *http.Request, rt Route) error {
	start := time.Now()
	res := <-invoke(w, r, rt.Handler())
	d.metrics.handled(pathCustom, time.Since(start))

	if res.err != nil {
		d.metrics.dispatched(pathCustom, resultFault)
		return res.err
	}
	d.metrics.dispatched(pathCustom, resultServed)
	return nil
}

func (d *Dispatcher) handleNegotiated(w http.ResponseWriter, r *http.Request, rt Route) error {
	start := time.Now()
	pending := invoke(w, r, rt.Handler())

	neg, negErr := d.negotiate(r, rt.Produces())

	res := <-pending
	d.metrics.handled(pathNegotiated, time.Since(start))

	if res.err != nil {
		d.metrics.dispatched(pathNegotiated, resultFault)
		return res.err
	}

	if negErr != nil {
		d.report(w, r, rt, negErr)
		return nil
	}

	var buf bytes.Buffer
	if err := neg.Serializer.Serialize(&buf, res.value); err != nil {
		d.report(w, r, rt, fmt.Errorf("serialize %s: %w", neg.MediaType, err))
		return nil
	}

	w.Header().Set("Content-Type", neg.MediaType)
	if sc, ok := res.value.(StatusCoder); ok {
		w.WriteHeader(sc.StatusCode())
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		d.logger.DebugContext(r.Context(), "write response body", "err", err)
	}
	d.metrics.dispatched(pathNegotiated, resultServed)
	return nil
}

func (d *Dispatcher) negotiate(r *http.Request, produces Produces) (Negotiated, error) {
	accept, err := ParseAccept(r.Header)
	if err == nil {
		var neg Negotiated
		neg, err = Negotiate(accept, produces, d.registry)
		if err == nil {
			d.metrics.negotiated(neg.MediaType, nil)
			return neg, nil
		}
	}
	d.metrics.negotiated("", err)
	return Negotiated{}, err
}

// report sets the default Content-Type and hands err to the ErrorReporter.
func (d *Dispatcher) report(w http.ResponseWriter, r *http.Request, rt Route, err error) {
	var nerr *NegotiationError
	if errors.As(err, &nerr) {
		d.logger.DebugContext(r.Context(), "negotiation failed",
			"kind", nerr.Kind.String(),
			"accept", nerr.Accept,
			"path", r.URL.Path,
		)
	} else {
		d.logger.ErrorContext(r.Context(), "dispatch failed", "err", err, "path", r.URL.Path)
	}

	w.Header().Set("Content-Type", d.registry.DefaultContentType())
	d.reporter.HandleError(w, r, err, rt.Custom())
	d.metrics.dispatched(pathNegotiated, resultReported)
}

// invoke runs h on its own goroutine. A panic becomes a *PanicError fault and
// a handler that exits its goroutine (runtime.Goexit) yields ErrHandlerExited,
// so the channel always receives exactly one result.
func invoke(w http.ResponseWriter, r *http.Request, h Handler) <-chan result {
	ch := make(chan result, 1)
	go func() {
		returned := false
		defer func() {
			if rec := recover(); rec != nil {
				ch <- result{err: &PanicError{Value: rec, Stack: debug.Stack()}}
				return
			}
			if !returned {
				ch <- result{err: ErrHandlerExited}
			}
		}()
		v, err := h.Process(w, r)
		returned = true
		ch <- result{value: v, err: err}
	}()
	return ch
}

// ServeHTTP implements http.Handler. Unmatched requests go to the NotFound
// handler. A handler fault is logged and answered with its status code
// (500 unless the error is a StatusCoder) if nothing was written yet.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

	err := d.Handle(rec, r)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoRoute):
		d.notFound.ServeHTTP(w, r)
	default:
		attrs := []any{
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
		}
		var perr *PanicError
		if errors.As(err, &perr) {
			attrs = append(attrs, "stack", string(perr.Stack))
		}
		d.logger.ErrorContext(r.Context(), "handler fault", attrs...)
		if !rec.written() {
			status := ErrorStatus(err)
			http.Error(w, http.StatusText(status), status)
		}
	}
}
