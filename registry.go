package restrouter

import (
	"fmt"
	"slices"
)

// SerializerRegistry exposes the media types a service can produce.
type SerializerRegistry interface {
	SupportedMediaTypes() []string
	DefaultContentType() string
	Serializer(mediaType string) (Serializer, bool)
}

// Registry is the built-in SerializerRegistry. It is read-only once built
// and safe for concurrent use.
type Registry struct {
	serializers map[string]Serializer
	order       []string
	defaultType string

	extra      []Serializer
	noBuiltins bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithSerializer registers an additional serializer. A later serializer
// for the same media type replaces an earlier one.
func WithSerializer(s Serializer) RegistryOption {
	return func(r *Registry) {
		r.extra = append(r.extra, s)
	}
}

// WithDefault sets the default media type. It must be registered.
func WithDefault(mediaType string) RegistryOption {
	return func(r *Registry) {
		r.defaultType = normalizeMediaType(mediaType)
	}
}

// WithoutBuiltins drops the JSON and XML serializers registered by default.
func WithoutBuiltins() RegistryOption {
	return func(r *Registry) {
		r.noBuiltins = true
	}
}

// NewRegistry builds a registry with JSON first and XML second, then any
// serializers added through options. JSON is the default unless WithDefault
// says otherwise.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		serializers: make(map[string]Serializer),
		defaultType: "application/json",
	}
	for _, opt := range opts {
		opt(r)
	}

	if !r.noBuiltins {
		r.add(JSON())
		r.add(XML())
	}
	for _, s := range r.extra {
		r.add(s)
	}
	r.extra = nil

	if _, ok := r.serializers[r.defaultType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDefault, r.defaultType)
	}
	return r, nil
}

func (r *Registry) add(s Serializer) {
	mt := normalizeMediaType(s.MediaType())
	if _, ok := r.serializers[mt]; !ok {
		r.order = append(r.order, mt)
	}
	r.serializers[mt] = s
}

// SupportedMediaTypes returns the registered media types in registration order.
func (r *Registry) SupportedMediaTypes() []string { return slices.Clone(r.order) }

// DefaultContentType returns the default media type.
func (r *Registry) DefaultContentType() string { return r.defaultType }

// Serializer returns the serializer registered for mediaType.
func (r *Registry) Serializer(mediaType string) (Serializer, bool) {
	s, ok := r.serializers[mediaType]
	return s, ok
}
