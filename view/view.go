// Package view implements typed views: HTTP handlers whose inputs are
// declared as tagged Go structs and whose outputs are declared as typed
// results. The declarations drive both request binding and the generated
// OpenAPI document.
//
//	type GetPetInput struct {
//	    ID      int     `path:"id"`
//	    Details *bool   `query:"details"`
//	    Format  string  `query:"format" default:"json"`
//	    Token   string  `header:"X-Token"`
//	}
//
//	pets := view.New(
//	    view.Handle(http.MethodGet, getPet,
//	        view.Doc("Find a pet."),
//	        view.Returns(typing.Union(
//	            typing.Status(http.StatusOK, typing.Of[Pet]()),
//	            typing.Status(http.StatusNotFound, nil),
//	        )),
//	    ),
//	)
//	router.Handle("/pets/{id}", pets)
package view

import (
	"context"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-kit/log"

	"github.com/vitalvas/typedview/oas"
	"github.com/vitalvas/typedview/typing"
)

// Introspector is implemented by handlers the document generator can
// describe.
type Introspector interface {
	// AllowedMethods lists the upper-case HTTP methods with an endpoint.
	AllowedMethods() []string

	// Endpoint returns the endpoint registered for method.
	Endpoint(method string) (*Endpoint, bool)
}

// Reply is a handler result with an explicit status code.
type Reply struct {
	Status  int
	Body    any
	Cookies []*http.Cookie
}

var replyTypes = map[reflect.Type]bool{
	reflect.TypeFor[Reply]():  true,
	reflect.TypeFor[*Reply](): true,
}

// Endpoint is one method handler of a view.
type Endpoint struct {
	method  string
	in      reflect.Type
	out     reflect.Type
	opts    Options
	sig     *Signature
	sigErr  error
	handler func(ctx context.Context, in reflect.Value) (any, error)
}

// Handle registers fn as the handler of method. In is the input struct
// type; Out is marshaled as the JSON body of a 200 response unless it is a
// Reply.
func Handle[In, Out any](method string, fn func(ctx context.Context, in *In) (Out, error), opts ...Option) *Endpoint {
	e := &Endpoint{
		method: strings.ToUpper(method),
		in:     reflect.TypeFor[In](),
		out:    reflect.TypeFor[Out](),
	}

	for _, opt := range opts {
		opt(&e.opts)
	}

	e.sig, e.sigErr = Inspect(e.in, e.opts.ParamTypes)

	e.handler = func(ctx context.Context, in reflect.Value) (any, error) {
		return fn(ctx, in.Interface().(*In))
	}

	return e
}

// Method returns the upper-case HTTP method.
func (e *Endpoint) Method() string {
	return e.method
}

// Options returns the registration metadata.
func (e *Endpoint) Options() Options {
	return e.opts
}

// Signature returns the introspected input arguments.
func (e *Endpoint) Signature() (*Signature, error) {
	return e.sig, e.sigErr
}

// ReturnType returns the declared return type, or nil when nothing is
// declared and the handler returns a Reply.
func (e *Endpoint) ReturnType() *typing.Type {
	if e.opts.Returns != nil {
		return e.opts.Returns
	}
	if replyTypes[e.out] {
		return nil
	}
	return typing.Status(http.StatusOK, typing.Reflect(e.out))
}

// View dispatches requests to the endpoint of their method.
type View struct {
	endpoints map[string]*Endpoint
	logger    log.Logger
}

// New returns a view serving endpoints. A later endpoint replaces an
// earlier one with the same method.
func New(endpoints ...*Endpoint) *View {
	v := &View{
		endpoints: make(map[string]*Endpoint, len(endpoints)),
		logger:    log.NewNopLogger(),
	}
	for _, e := range endpoints {
		v.endpoints[e.method] = e
	}
	return v
}

// WithLogger sets the logger used to report handler failures.
func (v *View) WithLogger(logger log.Logger) *View {
	v.logger = logger
	return v
}

// AllowedMethods returns the methods with an endpoint, in document order.
func (v *View) AllowedMethods() []string {
	methods := make([]string, 0, len(v.endpoints))
	for m := range v.endpoints {
		methods = append(methods, m)
	}

	rank := make(map[string]int, len(oas.Methods))
	for i, m := range oas.Methods {
		rank[strings.ToUpper(m)] = i
	}
	sort.Slice(methods, func(i, j int) bool {
		ri, iok := rank[methods[i]]
		rj, jok := rank[methods[j]]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		return methods[i] < methods[j]
	})

	return methods
}

// Endpoint returns the endpoint of method.
func (v *View) Endpoint(method string) (*Endpoint, bool) {
	e, ok := v.endpoints[strings.ToUpper(method)]
	return e, ok
}

func (v *View) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e, ok := v.endpoints[r.Method]
	if !ok {
		w.Header().Set("Allow", strings.Join(v.AllowedMethods(), ", "))
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: http.StatusText(http.StatusMethodNotAllowed)})
		return
	}

	e.serve(w, r, v.logger)
}
