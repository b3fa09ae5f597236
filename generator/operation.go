package generator

import (
	"github.com/pkg/errors"

	"github.com/vitalvas/typedview/docstring"
	"github.com/vitalvas/typedview/oas"
	"github.com/vitalvas/typedview/typing"
	"github.com/vitalvas/typedview/view"
)

// operation populates op from the endpoint declaration.
func (g *generation) operation(op *oas.Operation, e *view.Endpoint) error {
	opts := e.Options()

	var doc docstring.Doc
	if opts.Doc != "" {
		doc = docstring.Parse(opts.Doc)
		if doc.Description != "" {
			op.SetDescription(doc.Description)
		}
	}

	switch {
	case len(opts.Tags) > 0:
		op.SetTags(opts.Tags)
	case len(doc.Tags) > 0:
		op.SetTags(doc.Tags)
	}
	if opts.OperationID != "" {
		op.SetOperationID(opts.OperationID)
	}

	if opts.Auth != nil && opts.Auth.Enabled {
		g.security(op, opts.Auth.AccessCookieName())
	}

	sig, err := e.Signature()
	if err != nil {
		return err
	}

	if len(sig.Body) > 0 {
		if err := g.requestBody(op, sig.Body[0]); err != nil {
			return err
		}
	}

	if err := g.parameters(op, sig); err != nil {
		return err
	}

	if ret := e.ReturnType(); ret != nil {
		b := &responseBuilder{
			generation:   g,
			op:           op,
			descriptions: doc.StatusCodes,
			provider:     opts.AuthProvider,
		}
		if err := b.build(ret); err != nil {
			return err
		}
	}

	return nil
}

func (g *generation) requestBody(op *oas.Operation, body view.Arg) error {
	model := body.Type
	if model.Kind() == typing.KindOptional {
		model = model.Elem()
	}

	s, err := g.reflector.Model(model.GoType())
	if err != nil {
		return errors.Wrapf(err, "body %q", body.Name)
	}
	g.mergeDefinitions(s)

	op.RequestBody().SetContent(oas.Node{
		"application/json": oas.Node{"schema": s},
	})

	return nil
}

// parameters appends the path, query and header arguments in that order.
func (g *generation) parameters(op *oas.Operation, sig *view.Signature) error {
	args := sig.Parameters()
	if len(args) == 0 {
		return nil
	}

	params := op.Parameters()
	for i, arg := range args {
		p, err := params.At(i)
		if err != nil {
			return err
		}

		p.SetIn(arg.In)
		p.SetName(arg.Name)

		s, err := g.reflector.Parameter(arg.Name, arg.Type, arg.Default, arg.HasDefault, arg.Tag)
		if err != nil {
			return err
		}
		g.mergeDefinitions(s)
		p.SetSchema(s)
		if desc, ok := s["description"].(string); ok && desc != "" {
			p.SetDescription(desc)
		}

		p.SetRequired(!arg.Type.IsOptional())
	}

	return nil
}
