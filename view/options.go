package view

import (
	"github.com/vitalvas/typedview/auth"
	"github.com/vitalvas/typedview/typing"
)

// Options is the metadata attached to an endpoint at registration.
type Options struct {
	// Doc is the free-form documentation of the operation. Its
	// "Status Codes:" and "Tags:" sections are parsed by the generator.
	Doc string

	// Tags groups the operation in the docs UI.
	Tags []string

	// OperationID is the unique operation identifier.
	OperationID string

	// Returns declares the return type. When nil the type is derived from
	// the handler result: Status(200, Out) unless Out is Reply.
	Returns *typing.Type

	// Auth requires a bearer or cookie token.
	Auth *auth.Config

	// AuthProvider marks the endpoint as the one setting the access cookie.
	AuthProvider *auth.ProviderConfig

	// ParamTypes overrides the declared type of named parameters.
	ParamTypes map[string]*typing.Type
}

// Option configures an endpoint.
type Option func(*Options)

// Doc sets the operation documentation.
func Doc(text string) Option {
	return func(o *Options) {
		o.Doc = text
	}
}

// Tags adds tags to the operation.
func Tags(tags ...string) Option {
	return func(o *Options) {
		o.Tags = append(o.Tags, tags...)
	}
}

// OperationID sets the operation identifier.
func OperationID(id string) Option {
	return func(o *Options) {
		o.OperationID = id
	}
}

// Returns declares the return type of the handler, usually a union of
// status-tagged types:
//
//	view.Returns(typing.Union(
//	    typing.Status(http.StatusOK, typing.Of[Pet]()),
//	    typing.Status(http.StatusNotFound, nil),
//	))
func Returns(t *typing.Type) Option {
	return func(o *Options) {
		o.Returns = t
	}
}

// Auth protects the endpoint with cfg. A disabled config is ignored.
func Auth(cfg auth.Config) Option {
	return func(o *Options) {
		o.Auth = &cfg
	}
}

// AuthProvider documents the Set-Cookie header of the response with the
// configured status code.
func AuthProvider(cfg auth.ProviderConfig) Option {
	return func(o *Options) {
		o.AuthProvider = &cfg
	}
}

// ParamType overrides the declared type of the parameter name, for
// declarations Go field types cannot express such as unions.
func ParamType(name string, t *typing.Type) Option {
	return func(o *Options) {
		if o.ParamTypes == nil {
			o.ParamTypes = make(map[string]*typing.Type)
		}
		o.ParamTypes[name] = t
	}
}
