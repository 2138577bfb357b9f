package restrouter

import (
	"encoding"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Serializer writes a value to a response body in one media type.
type Serializer interface {
	MediaType() string
	Serialize(w io.Writer, v any) error
}

// SerializerFunc adapts a function to a Serializer for the given media type.
func SerializerFunc(mediaType string, fn func(w io.Writer, v any) error) Serializer {
	return funcSerializer{mediaType: normalizeMediaType(mediaType), fn: fn}
}

type funcSerializer struct {
	mediaType string
	fn        func(w io.Writer, v any) error
}

func (s funcSerializer) MediaType() string                  { return s.mediaType }
func (s funcSerializer) Serialize(w io.Writer, v any) error { return s.fn(w, v) }

// JSON returns the application/json serializer.
func JSON() Serializer { return jsonSerializer{} }

type jsonSerializer struct{}

func (jsonSerializer) MediaType() string { return "application/json" }

func (jsonSerializer) Serialize(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// XML returns the application/xml serializer.
func XML() Serializer { return XMLFor("application/xml") }

// XMLFor returns an XML serializer registered under another media type,
// such as text/xml.
func XMLFor(mediaType string) Serializer {
	return xmlSerializer{mediaType: normalizeMediaType(mediaType)}
}

type xmlSerializer struct {
	mediaType string
}

func (s xmlSerializer) MediaType() string { return s.mediaType }

func (xmlSerializer) Serialize(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

// YAML returns the application/yaml serializer.
func YAML() Serializer { return yamlSerializer{} }

type yamlSerializer struct{}

func (yamlSerializer) MediaType() string { return "application/yaml" }

func (yamlSerializer) Serialize(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// CBOR returns an application/cbor serializer using canonical encoding.
func CBOR() (Serializer, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor enc mode: %w", err)
	}
	return cborSerializer{enc: em}, nil
}

type cborSerializer struct {
	enc cbor.EncMode
}

func (cborSerializer) MediaType() string { return "application/cbor" }

func (s cborSerializer) Serialize(w io.Writer, v any) error {
	return s.enc.NewEncoder(w).Encode(v)
}

// Text returns a text/plain serializer. Strings, byte slices, errors,
// fmt.Stringer and encoding.TextMarshaler values are written as-is;
// anything else is formatted with %v.
func Text() Serializer { return textSerializer{} }

type textSerializer struct{}

func (textSerializer) MediaType() string { return "text/plain" }

func (textSerializer) Serialize(w io.Writer, v any) error {
	var err error
	switch t := v.(type) {
	case string:
		_, err = io.WriteString(w, t)
	case []byte:
		_, err = w.Write(t)
	case encoding.TextMarshaler:
		var b []byte
		if b, err = t.MarshalText(); err == nil {
			_, err = w.Write(b)
		}
	case error:
		_, err = io.WriteString(w, t.Error())
	case fmt.Stringer:
		_, err = io.WriteString(w, t.String())
	default:
		_, err = fmt.Fprintf(w, "%v", v)
	}
	return err
}
