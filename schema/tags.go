package schema

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vitalvas/typedview/oas"
)

type jsonTagOpts struct {
	omitempty bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	if tag == "" {
		return "", jsonTagOpts{}
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, jsonTagOpts{
		omitempty: strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero"),
	}
}

// applyOpenAPITag parses the `openapi` struct tag and applies constraints to the schema.
//
// See: https://spec.openapis.org/oas/v3.0.3#properties
func applyOpenAPITag(s oas.Node, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if hasValue {
			value = strings.TrimSpace(value)
		}

		switch key {
		case "description", "format", "pattern", "title":
			s[key] = value
		case "example":
			s[key] = parseExampleValue(s, value)
		case "minimum", "maximum", "multipleOf":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				s[key] = v
			}
		case "minLength", "maxLength", "minItems", "maxItems", "minProperties", "maxProperties":
			if v, err := strconv.Atoi(value); err == nil {
				s[key] = v
			}
		case "enum":
			values := EnumValues(part)
			enum := make([]any, len(values))
			for i, v := range values {
				enum[i] = parseExampleValue(s, v)
			}
			s[key] = enum
		case "deprecated", "readOnly", "writeOnly", "uniqueItems", "nullable":
			s[key] = true
		}
	}
}

// EnumValues returns the members of the enum declared in an openapi tag, in
// their textual form, or nil when the tag declares none.
func EnumValues(tag string) []string {
	for part := range strings.SplitSeq(tag, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) != "enum" {
			continue
		}
		values := strings.Split(strings.TrimSpace(value), "|")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		return values
	}
	return nil
}

// parseExampleValue converts a string tag value to the appropriate Go type
// based on the schema's type field.
func parseExampleValue(s oas.Node, value string) any {
	switch s["type"] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := parseBool(value); err == nil {
			return v
		}
	}
	return value
}

// ParseValue converts the textual form of a value, as found in a default
// tag, a query string or a header, into a value of type t. Pointers are
// dereferenced; slices split on commas.
func ParseValue(t reflect.Type, text string) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Elem()
	if err := SetValue(v, text); err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

// SetValue parses text into the settable value v.
func SetValue(v reflect.Value, text string) error {
	if v.Kind() == reflect.Pointer {
		elem := reflect.New(v.Type().Elem())
		if err := SetValue(elem.Elem(), text); err != nil {
			return err
		}
		v.Set(elem)
		return nil
	}

	if v.Type() == timeType {
		ts, err := parseTime(text)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(ts))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(text)

	case reflect.Bool:
		b, err := parseBool(text)
		if err != nil {
			return err
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, v.Type().Bits())
		if err != nil {
			return errors.Wrap(err, "value is not a valid integer")
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, v.Type().Bits())
		if err != nil {
			return errors.Wrap(err, "value is not a valid integer")
		}
		v.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, v.Type().Bits())
		if err != nil {
			return errors.Wrap(err, "value is not a valid float")
		}
		v.SetFloat(f)

	case reflect.Slice:
		parts := strings.Split(text, ",")
		s := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := SetValue(s.Index(i), strings.TrimSpace(part)); err != nil {
				return errors.Wrapf(err, "item %d", i)
			}
		}
		v.Set(s)

	default:
		return errors.Wrapf(ErrUnsupportedType, "%s", v.Type())
	}

	return nil
}

var errBool = errors.New("value could not be parsed to a boolean")

// parseBool accepts the usual spellings of a flag in query strings and
// headers, case-insensitively.
func parseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	}
	return false, errors.Wrapf(errBool, "%q", text)
}

// Layouts tried in order. Values without an offset are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func parseTime(text string) (time.Time, error) {
	text = strings.TrimSpace(text)

	var err error
	for _, layout := range timeLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, text); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, errors.Wrap(err, "invalid datetime format")
}
