package schema

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vitalvas/typedview/oas"
	"github.com/vitalvas/typedview/typing"
)

const (
	// RefPrefix is the location of shared schemas in the document.
	RefPrefix = "#/components/schemas/"

	// DefinitionsKey holds nested model schemas inside a model schema.
	DefinitionsKey = "definitions"
)

var (
	// ErrUnsupportedType is returned for Go types that have no JSON Schema
	// representation, such as channels, functions, or maps with non-string keys.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotModel is returned when Model is called with a non-struct type.
	ErrNotModel = errors.New("not a model type")
)

// Exampler can be implemented by models to provide an example value for
// their schema.
//
//	func (Pet) OpenAPIExample() any {
//	    return Pet{Name: "Rex"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

var timeType = reflect.TypeFor[time.Time]()

// model is the memoized schema of one struct type.
type model struct {
	name   string
	schema oas.Node
	refs   []string
}

// Reflector converts Go types to schemas and memoizes model schemas.
type Reflector struct {
	models    map[reflect.Type]*model
	byName    map[string]*model
	typeNames map[reflect.Type]string
	nameTypes map[string]reflect.Type
	titles    cases.Caser
}

// NewReflector returns an empty Reflector.
func NewReflector() *Reflector {
	return &Reflector{
		models:    make(map[reflect.Type]*model),
		byName:    make(map[string]*model),
		typeNames: make(map[reflect.Type]string),
		nameTypes: make(map[string]reflect.Type),
		titles:    cases.Title(language.Und, cases.NoLower),
	}
}

// Model returns the schema of a struct type. Nested models are referenced
// with $ref and their schemas are placed under DefinitionsKey. The returned
// node is a fresh top-level copy, so callers may pop or add keys.
func (r *Reflector) Model(t reflect.Type) (oas.Node, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t == timeType {
		return nil, errors.Wrapf(ErrNotModel, "%v", t)
	}

	m, err := r.model(t)
	if err != nil {
		return nil, err
	}

	out := make(oas.Node, len(m.schema)+1)
	for k, v := range m.schema {
		out[k] = v
	}

	if defs := r.definitions(m); len(defs) > 0 {
		out[DefinitionsKey] = defs
	}

	return out, nil
}

// Type returns the schema of a classified type expression.
//
//   - Scalar: the inline schema of the Go type
//   - Model: the model schema with definitions
//   - ListOfModel: {type: array, items: <model schema>} with the item
//     definitions hoisted to the top level
//   - Optional: the schema of the wrapped type
//   - Union: {anyOf: [...]} over the members other than None
func (r *Reflector) Type(t *typing.Type) (oas.Node, error) {
	switch t.Kind() {
	case typing.KindScalar:
		return r.inline(t.GoType(), nil)

	case typing.KindModel:
		return r.Model(t.GoType())

	case typing.KindListOfModel:
		items, err := r.Model(t.Elem().GoType())
		if err != nil {
			return nil, err
		}
		out := oas.Node{"type": "array"}
		if defs := PopDefinitions(items); len(defs) > 0 {
			out[DefinitionsKey] = defs
		}
		out["items"] = items
		return out, nil

	case typing.KindOptional:
		return r.Type(t.Elem())

	case typing.KindUnion:
		var anyOf []any
		defs := make(map[string]oas.Node)
		for _, member := range t.Members() {
			if member.Kind() == typing.KindNone {
				continue
			}
			s, err := r.Type(member)
			if err != nil {
				return nil, err
			}
			for name, def := range PopDefinitions(s) {
				defs[name] = def
			}
			anyOf = append(anyOf, s)
		}
		out := oas.Node{"anyOf": anyOf}
		if len(defs) > 0 {
			out[DefinitionsKey] = defs
		}
		return out, nil
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%s", t)
}

// Parameter returns the schema of a request parameter: the schema of its
// declared type titled with the parameter name, with the default value when
// one is declared. Model-typed parameters reference the model through allOf.
// The openapi tag of the input field, when not empty, is applied last.
func (r *Reflector) Parameter(name string, t *typing.Type, def any, hasDefault bool, tag string) (oas.Node, error) {
	inner := t
	if inner.Kind() == typing.KindOptional {
		inner = inner.Elem()
	}

	var s oas.Node
	if inner.Kind() == typing.KindModel {
		m, err := r.Model(inner.GoType())
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", name)
		}
		ref := r.schemaName(inner.GoType())
		defs := PopDefinitions(m)
		defs[ref] = m
		s = oas.Node{
			"allOf":        []any{oas.Node{"$ref": RefPrefix + ref}},
			DefinitionsKey: defs,
		}
	} else {
		var err error
		if s, err = r.Type(t); err != nil {
			return nil, errors.Wrapf(err, "parameter %q", name)
		}
	}

	s["title"] = name
	if hasDefault && def != nil {
		s["default"] = def
	}
	applyOpenAPITag(s, tag)

	return s, nil
}

// PopDefinitions removes and returns the definitions of a schema. It returns
// an empty, non-nil map when there are none.
func PopDefinitions(s oas.Node) map[string]oas.Node {
	defs := make(map[string]oas.Node)

	switch v := s[DefinitionsKey].(type) {
	case map[string]oas.Node:
		for name, def := range v {
			defs[name] = def
		}
	case oas.Node:
		for name, def := range v {
			if n, ok := oas.AsNode(def); ok {
				defs[name] = n
			}
		}
	}

	delete(s, DefinitionsKey)
	return defs
}

// model builds or returns the memoized schema of a struct type.
func (r *Reflector) model(t reflect.Type) (*model, error) {
	if m, ok := r.models[t]; ok {
		return m, nil
	}

	name := r.schemaName(t)
	m := &model{name: name}
	r.models[t] = m
	r.byName[name] = m

	refs := make(map[string]bool)
	s := oas.Node{
		"title": name,
		"type":  "object",
	}
	props := oas.Node{}
	var required []string

	if err := r.collectFields(t, props, &required, refs, false); err != nil {
		delete(r.models, t)
		delete(r.byName, name)
		return nil, errors.Wrapf(err, "model %s", name)
	}

	if len(props) > 0 {
		s["properties"] = props
	}
	if len(required) > 0 {
		s["required"] = required
	}
	if ex, ok := reflect.New(t).Elem().Interface().(Exampler); ok {
		s["example"] = ex.OpenAPIExample()
	}

	m.schema = s
	m.refs = sortedNames(refs)
	return m, nil
}

// definitions returns the schemas of every model reachable from m, keyed by
// name. m itself is included only when it is reachable from its own fields.
func (r *Reflector) definitions(m *model) oas.Node {
	defs := oas.Node{}
	queue := append([]string(nil), m.refs...)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, seen := defs[name]; seen {
			continue
		}
		dep, ok := r.byName[name]
		if !ok || dep.schema == nil {
			continue
		}
		defs[name] = dep.schema
		queue = append(queue, dep.refs...)
	}

	return defs
}

// collectFields adds the exported fields of t to props. Embedded structs
// without a json name are inlined; pointer-embedded ones make every inlined
// field optional.
func (r *Reflector) collectFields(t reflect.Type, props oas.Node, required *[]string, refs map[string]bool, allOptional bool) error {
	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous {
			jsonName, _ := parseJSONTag(field.Tag.Get("json"))
			ft := field.Type
			isPtr := ft.Kind() == reflect.Pointer
			if isPtr {
				ft = ft.Elem()
			}
			if jsonName == "" && ft.Kind() == reflect.Struct {
				if err := r.collectFields(ft, props, required, refs, allOptional || isPtr); err != nil {
					return err
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		if name == "" {
			name = field.Name
		}

		prop, err := r.fieldSchema(field.Type, refs)
		if err != nil {
			return errors.Wrapf(err, "field %s", field.Name)
		}

		if _, isRef := prop["$ref"]; !isRef {
			prop["title"] = r.title(name)
			applyOpenAPITag(prop, field.Tag.Get("openapi"))
		}

		def, hasDefault := field.Tag.Lookup("default")
		if hasDefault {
			v, err := ParseValue(field.Type, def)
			if err != nil {
				return errors.Wrapf(err, "field %s default", field.Name)
			}
			if _, isRef := prop["$ref"]; !isRef {
				prop["default"] = v
			}
		}

		props[name] = prop

		optional := allOptional || opts.omitempty || hasDefault || field.Type.Kind() == reflect.Pointer
		if !optional {
			*required = append(*required, name)
		}
	}

	return nil
}

// fieldSchema returns the schema of a struct field type. Nested models
// become references and are recorded in refs.
func (r *Reflector) fieldSchema(t reflect.Type, refs map[string]bool) (oas.Node, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && t != timeType && t.Name() != "" {
		m, err := r.model(t)
		if err != nil {
			return nil, err
		}
		refs[m.name] = true
		return oas.Node{"$ref": RefPrefix + m.name}, nil
	}

	return r.inline(t, refs)
}

// inline maps Go types to inline schemas. Models reached through
// collections are referenced and recorded in refs when refs is non-nil;
// otherwise their definitions are attached to the returned node.
func (r *Reflector) inline(t reflect.Type, refs map[string]bool) (oas.Node, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnsupportedType, "nil type")
	}

	if refs == nil {
		refs = make(map[string]bool)
		s, err := r.inline(t, refs)
		if err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			defs := oas.Node{}
			for _, name := range sortedNames(refs) {
				defs[name] = r.byName[name].schema
				for dep, schema := range r.definitions(r.byName[name]) {
					defs[dep] = schema
				}
			}
			s[DefinitionsKey] = defs
		}
		return s, nil
	}

	if t == timeType {
		return oas.Node{"type": "string", "format": "date-time"}, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return r.fieldSchema(t, refs)

	case reflect.Bool:
		return oas.Node{"type": "boolean"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return oas.Node{"type": "integer"}, nil

	case reflect.Float32, reflect.Float64:
		return oas.Node{"type": "number"}, nil

	case reflect.String:
		return oas.Node{"type": "string"}, nil

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return oas.Node{"type": "string", "format": "byte"}, nil
		}
		items, err := r.fieldSchema(t.Elem(), refs)
		if err != nil {
			return nil, err
		}
		return oas.Node{"type": "array", "items": items}, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, errors.Wrapf(ErrUnsupportedType, "map key %s", t.Key())
		}
		values, err := r.fieldSchema(t.Elem(), refs)
		if err != nil {
			return nil, err
		}
		return oas.Node{"type": "object", "additionalProperties": values}, nil

	case reflect.Struct:
		props := oas.Node{}
		var required []string
		if err := r.collectFields(t, props, &required, refs, false); err != nil {
			return nil, err
		}
		s := oas.Node{"type": "object", "properties": props}
		if len(required) > 0 {
			s["required"] = required
		}
		return s, nil

	case reflect.Interface:
		return oas.Node{}, nil
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%s", t)
}

// title turns a property name into a human title: "nb_items" -> "Nb Items".
func (r *Reflector) title(name string) string {
	return r.titles.String(strings.ReplaceAll(name, "_", " "))
}

// schemaName returns a unique schema name for the given type. If two types
// from different packages share the same simple name, the second type gets
// a qualified name using its package's last path segment as a prefix. When
// the prefixed name still collides a numeric suffix is appended.
func (r *Reflector) schemaName(t reflect.Type) string {
	if name, ok := r.typeNames[t]; ok {
		return name
	}

	simple := sanitizeSchemaName(t.Name())
	name := simple
	if existing, ok := r.nameTypes[name]; ok && existing != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if existing, ok := r.nameTypes[name]; ok && existing != t {
			base := name
			for i := 2; ; i++ {
				candidate := base + strconv.Itoa(i)
				if _, ok := r.nameTypes[candidate]; !ok {
					name = candidate
					break
				}
			}
		}
	}

	r.typeNames[t] = name
	r.nameTypes[name] = t
	return name
}

// pkgPrefix extracts the last segment of a Go package path and capitalizes
// it for use as a schema name prefix ("net/http" -> "Http").
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if len(pkgPath) == 0 {
		return ""
	}
	pkgPath = strings.ReplaceAll(pkgPath, "-", "_")
	pkgPath = strings.ReplaceAll(pkgPath, ".", "_")
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// sanitizeSchemaName cleans up generic type names: "Page[pkg.Pet]" becomes
// "PagePet" and "Page[[]pkg.Pet]" becomes "PagePetList".
func sanitizeSchemaName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	result := base + inner
	if isList {
		result += "List"
	}
	return result
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
