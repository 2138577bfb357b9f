package restrouter

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorReporter writes the response for a fault the Dispatcher recovered
// from, such as a failed negotiation. custom reports whether the matched
// route was a custom route.
type ErrorReporter interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error, custom bool)
}

// ErrorReporterFunc adapts a function to an ErrorReporter.
type ErrorReporterFunc func(w http.ResponseWriter, r *http.Request, err error, custom bool)

// HandleError calls f(w, r, err, custom).
func (f ErrorReporterFunc) HandleError(w http.ResponseWriter, r *http.Request, err error, custom bool) {
	f(w, r, err, custom)
}

// ProblemReporter writes errors as RFC 9457 problem details using the
// registry's default serializer. The Content-Type already set by the
// Dispatcher is left untouched.
type ProblemReporter struct {
	Registry SerializerRegistry
	Logger   *slog.Logger
}

// HandleError implements ErrorReporter.
func (p *ProblemReporter) HandleError(w http.ResponseWriter, r *http.Request, err error, _ bool) {
	status := ErrorStatus(err)

	problem := &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}
	var pd *ProblemDetail
	if errors.As(err, &pd) {
		cp := *pd
		problem = &cp
	}
	if problem.Instance == "" {
		problem.Instance = r.URL.Path
	}

	s, found := p.Registry.Serializer(p.Registry.DefaultContentType())
	if !found {
		http.Error(w, problem.Error(), problem.Status)
		return
	}

	var buf bytes.Buffer
	if encErr := s.Serialize(&buf, problem); encErr != nil {
		p.logger().ErrorContext(r.Context(), "encode problem detail", "err", encErr)
		http.Error(w, problem.Error(), problem.Status)
		return
	}

	w.WriteHeader(problem.Status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	w.Write(buf.Bytes())
}

func (p *ProblemReporter) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
