// Package typing describes the declared types of typed-view inputs and
// outputs as classified type expressions.
//
// A Type is classified exactly once, when it is built, into one of the
// Kind variants. Schema derivation and response building switch on the kind
// and never re-inspect raw reflection metadata.
//
//	typing.Of[int]()                                     // Scalar
//	typing.Of[*int]()                                    // Optional[int]
//	typing.Of[Pet]()                                     // Model
//	typing.Of[[]Pet]()                                   // List[Pet]
//	typing.Union(typing.Of[int](), typing.None())        // Optional[int]
//	typing.Union(
//	    typing.Status(http.StatusCreated, typing.Of[Pet]()),
//	    typing.Status(http.StatusNotFound, nil),
//	)                                                    // Union[R201[Pet], R404]
package typing

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind is the classification of a type expression.
type Kind int

const (
	KindUnknown Kind = iota
	KindNone
	KindScalar
	KindModel
	KindListOfModel
	KindOptional
	KindStatusTagged
	KindUnion
)

var kindNames = [...]string{
	KindUnknown:      "Unknown",
	KindNone:         "None",
	KindScalar:       "Scalar",
	KindModel:        "Model",
	KindListOfModel:  "ListOfModel",
	KindOptional:     "Optional",
	KindStatusTagged: "StatusTagged",
	KindUnion:        "Union",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

var timeType = reflect.TypeFor[time.Time]()

// Type is a classified type expression.
type Type struct {
	kind    Kind
	goType  reflect.Type
	elem    *Type
	members []*Type
	name    string
}

// Of classifies the Go type T.
func Of[T any]() *Type {
	return Reflect(reflect.TypeFor[T]())
}

// Reflect classifies a Go type:
//
//   - *T is Optional[T]
//   - struct types other than time.Time are Model
//   - slices and arrays of models are ListOfModel
//   - booleans, numbers, strings, time.Time, maps with string keys,
//     interfaces, and slices of those are Scalar
//   - everything else is Unknown
func Reflect(t reflect.Type) *Type {
	if t == nil {
		return &Type{kind: KindUnknown}
	}

	switch t.Kind() {
	case reflect.Pointer:
		return Optional(Reflect(t.Elem()))

	case reflect.Struct:
		if t == timeType {
			return &Type{kind: KindScalar, goType: t}
		}
		return &Type{kind: KindModel, goType: t}

	case reflect.Slice, reflect.Array:
		item := Reflect(t.Elem())
		if item.kind == KindOptional {
			item = item.elem
		}
		switch item.Kind() {
		case KindModel:
			return &Type{kind: KindListOfModel, goType: t, elem: item}
		case KindScalar:
			return &Type{kind: KindScalar, goType: t}
		}
		return &Type{kind: KindUnknown, goType: t}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Type{kind: KindUnknown, goType: t}
		}
		if value := Reflect(t.Elem()); value.kind == KindUnknown {
			return &Type{kind: KindUnknown, goType: t}
		}
		return &Type{kind: KindScalar, goType: t}

	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Interface:
		return &Type{kind: KindScalar, goType: t}
	}

	return &Type{kind: KindUnknown, goType: t}
}

// None is the type of the absent value.
func None() *Type {
	return &Type{kind: KindNone}
}

// Optional wraps t as nullable. Optional of an Optional is the same type.
func Optional(t *Type) *Type {
	if t != nil && t.kind == KindOptional {
		return t
	}
	return &Type{kind: KindOptional, elem: t}
}

// Union builds a union of types. Nested unions are flattened. A union of
// exactly two members where one is None is Optional of the other; a union
// with one member is that member.
func Union(members ...*Type) *Type {
	var flat []*Type
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.kind == KindUnion {
			flat = append(flat, m.members...)
			continue
		}
		flat = append(flat, m)
	}

	switch len(flat) {
	case 0:
		return &Type{kind: KindUnknown}
	case 1:
		return flat[0]
	case 2:
		if flat[0].kind == KindNone {
			return Optional(flat[1])
		}
		if flat[1].kind == KindNone {
			return Optional(flat[0])
		}
	}

	return &Type{kind: KindUnion, members: flat}
}

// Status builds a status-tagged type named R<code>, optionally carrying a
// body type. A nil body declares a response without payload.
func Status(code int, body *Type) *Type {
	return &Type{kind: KindStatusTagged, name: "R" + strconv.Itoa(code), elem: body}
}

// Kind returns the classification.
func (t *Type) Kind() Kind {
	if t == nil {
		return KindUnknown
	}
	return t.kind
}

// GoType returns the Go type behind Scalar, Model and ListOfModel types.
func (t *Type) GoType() reflect.Type {
	return t.goType
}

// Elem returns the wrapped type of an Optional, the item model of a
// ListOfModel, or the body of a StatusTagged type (nil when bare).
func (t *Type) Elem() *Type {
	return t.elem
}

// Members returns the members of a Union.
func (t *Type) Members() []*Type {
	return t.members
}

// Name returns the tag name of a StatusTagged type or the Go type name.
func (t *Type) Name() string {
	if t.name != "" {
		return t.name
	}
	if t.goType != nil {
		return t.goType.Name()
	}
	return ""
}

// StatusCode derives the HTTP status code from the tag name of a
// StatusTagged type. It returns 0 for other kinds.
func (t *Type) StatusCode() int {
	if t.Kind() != KindStatusTagged || !strings.HasPrefix(t.name, "R") {
		return 0
	}
	code, err := strconv.Atoi(t.name[1:])
	if err != nil {
		return 0
	}
	return code
}

// IsOptional reports whether the type is a nullable wrapper.
func (t *Type) IsOptional() bool {
	return t.Kind() == KindOptional
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}

	switch t.kind {
	case KindNone:
		return "None"
	case KindOptional:
		return "Optional[" + t.elem.String() + "]"
	case KindListOfModel:
		return "List[" + t.elem.String() + "]"
	case KindStatusTagged:
		if t.elem == nil {
			return t.name
		}
		return t.name + "[" + t.elem.String() + "]"
	case KindUnion:
		parts := make([]string, len(t.members))
		for i, m := range t.members {
			parts[i] = m.String()
		}
		return "Union[" + strings.Join(parts, ", ") + "]"
	}

	if t.goType != nil {
		return t.goType.String()
	}
	return fmt.Sprintf("%s type", t.kind)
}
