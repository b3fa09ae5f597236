package view

import (
	"reflect"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"

	"github.com/vitalvas/typedview/schema"
	"github.com/vitalvas/typedview/typing"
)

// ErrInvalidSignature is returned when a handler input struct cannot be
// introspected.
var ErrInvalidSignature = errors.New("invalid handler signature")

// Argument locations.
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
	InBody   = "body"
)

// Arg is one declared handler argument.
type Arg struct {
	Name string
	In   string
	Type *typing.Type

	// Default is the parsed default value; DefaultText its tag form.
	Default     any
	DefaultText string
	HasDefault  bool

	// Tag is the raw openapi tag of the field. Enum lists the values it
	// permits, if any.
	Tag  string
	Enum []string

	index []int
}

// Signature holds the arguments of a handler input struct grouped by
// location, each group in field declaration order.
type Signature struct {
	Path   []Arg
	Body   []Arg
	Query  []Arg
	Header []Arg
}

// Defaults returns the default values keyed by argument name.
func (s *Signature) Defaults() map[string]any {
	defaults := make(map[string]any)
	for _, group := range [][]Arg{s.Path, s.Body, s.Query, s.Header} {
		for _, arg := range group {
			if arg.HasDefault {
				defaults[arg.Name] = arg.Default
			}
		}
	}
	return defaults
}

// Parameters returns the path, query and header arguments in that order.
func (s *Signature) Parameters() []Arg {
	params := make([]Arg, 0, len(s.Path)+len(s.Query)+len(s.Header))
	params = append(params, s.Path...)
	params = append(params, s.Query...)
	return append(params, s.Header...)
}

var locations = []string{InPath, InQuery, InHeader, InBody}

// Inspect builds the signature of an input struct type. Fields declare their
// location with one of the path, query, header or body tags; untagged fields
// are ignored. Embedded structs are inspected in place.
func Inspect(t reflect.Type, overrides map[string]*typing.Type) (*Signature, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrInvalidSignature, "input %s is not a struct", t)
	}

	sig := &Signature{}
	seen := make(map[string]string)
	if err := inspectFields(t, nil, overrides, sig, seen); err != nil {
		return nil, err
	}

	return sig, nil
}

func inspectFields(t reflect.Type, parent []int, overrides map[string]*typing.Type, sig *Signature, seen map[string]string) error {
	for i := range t.NumField() {
		field := t.Field(i)
		index := append(append([]int(nil), parent...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && !hasLocation(field.Tag) {
			if err := inspectFields(field.Type, index, overrides, sig, seen); err != nil {
				return err
			}
			continue
		}

		in, name, ok := location(field.Tag)
		if !ok {
			continue
		}
		if !field.IsExported() {
			return errors.Wrapf(ErrInvalidSignature, "field %s is not exported", field.Name)
		}
		if name == "" {
			name = field.Name
		}
		if prev, dup := seen[name]; dup {
			return errors.Wrapf(ErrInvalidSignature, "argument %q declared in %s and %s", name, prev, in)
		}
		seen[name] = in

		if in == InHeader && !httpguts.ValidHeaderFieldName(name) {
			return errors.Wrapf(ErrInvalidSignature, "invalid header name %q", name)
		}

		arg := Arg{
			Name:  name,
			In:    in,
			Type:  typing.Reflect(field.Type),
			Tag:   field.Tag.Get("openapi"),
			index: index,
		}
		if in != InBody {
			arg.Enum = schema.EnumValues(arg.Tag)
		}
		if override, ok := overrides[name]; ok {
			arg.Type = override
		}

		if in == InBody {
			kind := arg.Type.Kind()
			if kind == typing.KindOptional {
				kind = arg.Type.Elem().Kind()
			}
			if kind != typing.KindModel {
				return errors.Wrapf(ErrInvalidSignature, "body %q must be a struct, got %s", name, field.Type)
			}
		}

		if text, ok := field.Tag.Lookup("default"); ok {
			if in == InBody {
				return errors.Wrapf(ErrInvalidSignature, "body %q cannot declare a default", name)
			}
			v, err := schema.ParseValue(field.Type, text)
			if err != nil {
				return errors.Wrapf(ErrInvalidSignature, "default of %q: %v", name, err)
			}
			if len(arg.Enum) > 0 && !slices.Contains(arg.Enum, text) {
				return errors.Wrapf(ErrInvalidSignature, "default of %q is not a member of its enum", name)
			}
			arg.Default = v
			arg.DefaultText = text
			arg.HasDefault = true
		}

		switch in {
		case InPath:
			sig.Path = append(sig.Path, arg)
		case InQuery:
			sig.Query = append(sig.Query, arg)
		case InHeader:
			sig.Header = append(sig.Header, arg)
		case InBody:
			sig.Body = append(sig.Body, arg)
		}
	}

	return nil
}

func hasLocation(tag reflect.StructTag) bool {
	_, _, ok := location(tag)
	return ok
}

// location returns the first location tag of a field and its name.
func location(tag reflect.StructTag) (string, string, bool) {
	for _, in := range locations {
		if v, ok := tag.Lookup(in); ok {
			name, _, _ := strings.Cut(v, ",")
			return in, name, true
		}
	}
	return "", "", false
}
