// Package oas provides a mutable, in-memory model of an OpenAPI v3.0.0
// document.
//
// The document is a single tree of Node values (map[string]any) and every
// type in this package is a thin view over one node of that tree. Views hold
// no state besides the node reference, so two views over the same node always
// observe each other's writes.
//
// Every accessor that addresses a structural key (a mapping or a sequence)
// performs get-or-create: the key is initialized to its empty value before the
// view is returned. This makes construction order-independent:
//
//	spec := oas.New()
//	params := spec.Paths().Get("/items").Get().Parameters()
//	p, _ := params.At(0) // appends the first parameter
//	p.SetName("limit")
//	p.SetIn(oas.InQuery)
//
// Lists of scalars are the exception: Operation.Tags reads the key without
// creating it, so an operation never gains an empty "tags" entry. Such lists
// are written whole with their setter.
//
// Sequence-backed collections (servers, parameters) append when indexed with
// their current length. Responses are addressed by status code and reject
// codes outside [100, 599] with ErrInvalidStatusCode. Security requirements
// are addressed by scheme name and never duplicated.
//
// See: https://spec.openapis.org/oas/v3.0.3
package oas
