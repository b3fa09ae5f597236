package oas

import (
	"strconv"

	"github.com/pkg/errors"
)

// Responses maps status codes to responses.
//
// See: https://spec.openapis.org/oas/v3.0.3#responses-object
type Responses struct {
	node Node
}

// At returns the response for a status code, creating it if needed. Codes
// outside [100, 599] fail with ErrInvalidStatusCode.
func (r *Responses) At(code int) (*Response, error) {
	if code < 100 || code > 599 {
		return nil, errors.Wrapf(ErrInvalidStatusCode, "got %d", code)
	}
	return newResponse(Child(r.node, strconv.Itoa(code))), nil
}

// AtString is At for a status code given as a string key.
func (r *Responses) AtString(code string) (*Response, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidStatusCode, "got %q", code)
	}
	return r.At(n)
}

// Len returns the number of responses.
func (r *Responses) Len() int {
	return len(r.node)
}

func newResponse(n Node) *Response {
	if _, ok := n["description"]; !ok {
		n["description"] = ""
	}
	return &Response{node: n}
}

// Response describes one status code's response. The description defaults
// to an empty string because the field is required.
//
// See: https://spec.openapis.org/oas/v3.0.3#response-object
type Response struct {
	node Node
}

func (r *Response) Description() string     { return stringAt(r.node, "description") }
func (r *Response) SetDescription(s string) { r.node["description"] = s }

// Content returns the media-type mapping, creating it if needed.
func (r *Response) Content() Node {
	return Child(r.node, "content")
}

// SetContent replaces the media-type mapping.
func (r *Response) SetContent(content Node) {
	r.node["content"] = content
}

// Headers returns the response headers, creating the mapping if needed.
func (r *Response) Headers() *Headers {
	return &Headers{node: Child(r.node, "headers")}
}

// Headers maps header names to headers.
type Headers struct {
	node Node
}

// Get returns the named header, creating it and its schema if needed.
func (h *Headers) Get(name string) *Header {
	n := Child(h.node, name)
	return &Header{schema: Child(n, "schema")}
}

// Header is a response header. Its type and example live in its schema.
//
// See: https://spec.openapis.org/oas/v3.0.3#header-object
type Header struct {
	schema Node
}

func (h *Header) Type() string     { return stringAt(h.schema, "type") }
func (h *Header) SetType(t string) { h.schema["type"] = t }
func (h *Header) Example() any     { return h.schema["example"] }
func (h *Header) SetExample(v any) { h.schema["example"] = v }
