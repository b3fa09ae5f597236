// Package schema converts Go types and classified type expressions into
// JSON Schema fragments for OpenAPI v3.0.0 documents.
//
// Named struct types are models. A model schema references the nested models
// it uses through "#/components/schemas/{Name}" and carries their schemas in
// a "definitions" mapping next to its own keys. PopDefinitions strips that
// mapping so the caller can merge it into the shared components section:
//
//	r := schema.NewReflector()
//	s, err := r.Model(reflect.TypeFor[Pet]())
//	defs := schema.PopDefinitions(s)
//	spec.Components().MergeSchemas(defs)
//
// A Reflector memoizes model schemas and is meant to live for one document
// generation. It is not safe for concurrent use.
//
// # Struct Tags
//
// Property names follow the "json" tag. Fields tagged json:"-" and
// unexported fields are skipped. Fields are required unless they are
// pointers, carry omitempty/omitzero, or declare a "default" tag.
//
// The "openapi" tag enriches the property schema:
//
//	type Pet struct {
//	    Name string `json:"name" openapi:"description=Pet name,minLength=1"`
//	    Kind string `json:"kind" openapi:"enum=cat|dog"`
//	    Age  int    `json:"age" default:"1" openapi:"minimum=0"`
//	}
//
// Supported keys: description, example, format, title, minimum, maximum,
// minLength, maxLength, pattern, multipleOf, minItems, maxItems, uniqueItems,
// enum (pipe-separated), deprecated, readOnly, writeOnly.
//
// See: https://spec.openapis.org/oas/v3.0.3#schema-object
package schema
