package restrouter

import (
	"fmt"
	"slices"
	"strings"
)

// Negotiated is a resolved media type and the serializer registered for it.
type Negotiated struct {
	MediaType  string
	Serializer Serializer
}

// Negotiate picks the response media type for one request. It only reads
// its arguments.
//
// With an Accept directive, the requested type must be supported by reg and
// allowed by produces. Without one, an unconstrained route gets the default
// type; otherwise the candidates are produces ∩ supported, in declaration
// order. A single candidate wins, several candidates resolve to the default
// type if it is among them, and anything else is CannotSerialize.
func Negotiate(accept Accept, produces Produces, reg SerializerRegistry) (Negotiated, error) {
	mediaType, err := resolve(accept, produces, reg.SupportedMediaTypes(), reg.DefaultContentType())
	if err != nil {
		return Negotiated{}, err
	}

	s, ok := reg.Serializer(mediaType)
	if !ok {
		return Negotiated{}, fmt.Errorf("%w: %s", ErrSerializerMissing, mediaType)
	}
	return Negotiated{MediaType: mediaType, Serializer: s}, nil
}

// resolve compares media types case-insensitively and answers with the
// registry's spelling, so Serializer lookups hit the registered key.
func resolve(accept Accept, produces Produces, supported []string, defaultType string) (string, error) {
	if requested, ok := accept.MediaType(); ok {
		if mt, found := lookupFold(supported, requested); found && produces.Allows(requested) {
			return mt, nil
		}
		return "", &NegotiationError{Kind: CannotSerialize, Accept: requested}
	}

	if !produces.Declared() {
		return defaultType, nil
	}

	var candidates []string
	for _, t := range produces.types {
		if mt, found := lookupFold(supported, t); found {
			candidates = append(candidates, mt)
		}
	}

	switch {
	case len(candidates) == 1:
		return candidates[0], nil
	case len(candidates) > 1 && containsFold(candidates, defaultType):
		return defaultType, nil
	default:
		// No candidate, or several with no default among them.
		return "", &NegotiationError{Kind: CannotSerialize}
	}
}

func containsFold(types []string, mediaType string) bool {
	_, found := lookupFold(types, mediaType)
	return found
}

func lookupFold(types []string, mediaType string) (string, bool) {
	i := slices.IndexFunc(types, func(t string) bool { return strings.EqualFold(t, mediaType) })
	if i < 0 {
		return "", false
	}
	return types[i], true
}
