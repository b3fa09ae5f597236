package generator

import (
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/vitalvas/typedview/auth"
	"github.com/vitalvas/typedview/oas"
	"github.com/vitalvas/typedview/typing"
)

// responseBuilder turns a declared return type into operation responses.
type responseBuilder struct {
	*generation
	op           *oas.Operation
	descriptions map[int]string
	provider     *auth.ProviderConfig
}

func (b *responseBuilder) build(t *typing.Type) error {
	switch t.Kind() {
	case typing.KindUnion:
		for _, member := range t.Members() {
			if err := b.build(member); err != nil {
				return err
			}
		}
		return nil

	case typing.KindOptional:
		return b.build(t.Elem())
	}

	return b.status(t)
}

// status adds the response of one status-tagged type. Other shapes carry no
// status code and contribute nothing.
func (b *responseBuilder) status(t *typing.Type) error {
	if t.Kind() != typing.KindStatusTagged {
		level.Debug(b.logger).Log("msg", "return type has no status code, skipping", "type", t.String())
		return nil
	}

	code := t.StatusCode()
	resp, err := b.op.Responses().At(code)
	if err != nil {
		return errors.Wrapf(err, "return type %s", t)
	}

	content := oas.Node{}
	if body := t.Elem(); body != nil {
		s, err := b.body(body)
		if err != nil {
			return errors.Wrapf(err, "response %d", code)
		}
		content["application/json"] = oas.Node{"schema": s}
	}
	resp.SetContent(content)

	if desc, ok := b.descriptions[code]; ok && desc != "" {
		resp.SetDescription(desc)
	}

	if b.provider != nil && b.provider.Status() == code {
		cookie := resp.Headers().Get("Set-Cookie")
		cookie.SetType("string")
		cookie.SetExample(b.provider.CookieExample)
	}

	return nil
}

// body returns the schema of a response payload. Model definitions move to
// components.schemas.
func (b *responseBuilder) body(t *typing.Type) (oas.Node, error) {
	switch t.Kind() {
	case typing.KindModel:
		s, err := b.reflector.Model(t.GoType())
		if err != nil {
			return nil, err
		}
		b.mergeDefinitions(s)
		return s, nil

	case typing.KindListOfModel:
		items, err := b.body(t.Elem())
		if err != nil {
			return nil, err
		}
		return oas.Node{"type": "array", "items": items}, nil

	case typing.KindOptional:
		return b.body(t.Elem())

	case typing.KindUnion:
		if !schemaUnion(t) {
			level.Debug(b.logger).Log("msg", "response body union has members without a schema", "type", t.String())
			return oas.Node{}, nil
		}
		fallthrough

	case typing.KindScalar:
		s, err := b.reflector.Type(t)
		if err != nil {
			return nil, err
		}
		b.mergeDefinitions(s)
		return s, nil
	}

	level.Debug(b.logger).Log("msg", "response body shape not recognized", "type", t.String())
	return oas.Node{}, nil
}

// schemaUnion reports whether every member of a union has a schema of its
// own. None members are allowed and dropped from the anyOf list.
func schemaUnion(t *typing.Type) bool {
	for _, member := range t.Members() {
		if member.Kind() != typing.KindNone && !hasSchema(member) {
			return false
		}
	}
	return true
}

func hasSchema(t *typing.Type) bool {
	switch t.Kind() {
	case typing.KindScalar, typing.KindModel, typing.KindListOfModel:
		return true
	case typing.KindOptional:
		return hasSchema(t.Elem())
	case typing.KindUnion:
		return schemaUnion(t)
	}
	return false
}
