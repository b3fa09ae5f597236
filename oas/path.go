package oas

import (
	"strings"

	"github.com/pkg/errors"
)

// Methods lists the operation fields of a path item in document order.
//
// See: https://spec.openapis.org/oas/v3.0.3#fixed-fields-7
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// PathItem describes the operations available on a single URL template.
//
// See: https://spec.openapis.org/oas/v3.0.3#path-item-object
type PathItem struct {
	node Node
}

func (p *PathItem) Get() *Operation     { return p.op("get") }
func (p *PathItem) Put() *Operation     { return p.op("put") }
func (p *PathItem) Post() *Operation    { return p.op("post") }
func (p *PathItem) Delete() *Operation  { return p.op("delete") }
func (p *PathItem) Options() *Operation { return p.op("options") }
func (p *PathItem) Head() *Operation    { return p.op("head") }
func (p *PathItem) Patch() *Operation   { return p.op("patch") }
func (p *PathItem) Trace() *Operation   { return p.op("trace") }

// Operation returns the operation for an HTTP method name in any case.
func (p *PathItem) Operation(method string) (*Operation, error) {
	method = strings.ToLower(method)
	for _, m := range Methods {
		if m == method {
			return p.op(m), nil
		}
	}
	return nil, errors.Wrap(ErrUnknownMethod, method)
}

func (p *PathItem) Summary() string         { return stringAt(p.node, "summary") }
func (p *PathItem) SetSummary(s string)     { p.node["summary"] = s }
func (p *PathItem) Description() string     { return stringAt(p.node, "description") }
func (p *PathItem) SetDescription(s string) { p.node["description"] = s }

// Node returns the underlying mapping.
func (p *PathItem) Node() Node {
	return p.node
}

func (p *PathItem) op(method string) *Operation {
	return &Operation{node: Child(p.node, method)}
}

// Operation describes one (path, method) pair.
//
// See: https://spec.openapis.org/oas/v3.0.3#operation-object
type Operation struct {
	node Node
}

func (o *Operation) Summary() string            { return stringAt(o.node, "summary") }
func (o *Operation) SetSummary(summary string)  { o.node["summary"] = summary }
func (o *Operation) Description() string        { return stringAt(o.node, "description") }
func (o *Operation) SetDescription(desc string) { o.node["description"] = desc }
func (o *Operation) OperationID() string        { return stringAt(o.node, "operationId") }
func (o *Operation) SetOperationID(id string)   { o.node["operationId"] = id }
func (o *Operation) RequestBody() *RequestBody  { return &RequestBody{node: Child(o.node, "requestBody")} }
func (o *Operation) Responses() *Responses      { return &Responses{node: Child(o.node, "responses")} }

// Tags returns the operation tags. Reading does not create the key.
func (o *Operation) Tags() []string {
	return stringsAt(o.node, "tags")
}

// SetTags replaces the operation tags.
func (o *Operation) SetTags(tags []string) {
	o.node["tags"] = append([]string(nil), tags...)
}

// Parameters returns the indexed parameter sequence, creating it if needed.
func (o *Operation) Parameters() *Parameters {
	ChildList(o.node, "parameters")
	return &Parameters{owner: o.node}
}

// Security returns the security requirements, creating the sequence if needed.
func (o *Operation) Security() *Security {
	ChildList(o.node, "security")
	return &Security{owner: o.node}
}

// Node returns the operation node.
func (o *Operation) Node() Node {
	return o.node
}

// RequestBody describes the body of a request.
//
// See: https://spec.openapis.org/oas/v3.0.3#request-body-object
type RequestBody struct {
	node Node
}

func (r *RequestBody) Description() string     { return stringAt(r.node, "description") }
func (r *RequestBody) SetDescription(s string) { r.node["description"] = s }
func (r *RequestBody) Required() bool          { return boolAt(r.node, "required") }
func (r *RequestBody) SetRequired(b bool)      { r.node["required"] = b }

// Content returns the media-type mapping, creating it if needed.
func (r *RequestBody) Content() Node {
	return Child(r.node, "content")
}

// SetContent replaces the media-type mapping.
func (r *RequestBody) SetContent(content Node) {
	r.node["content"] = content
}
