// Package generator builds OpenAPI 3.0.0 documents by walking gorilla/mux
// routers and introspecting the typed views registered on them.
//
// Every call builds a new document and a new schema reflector, so the
// result always reflects the routes registered at call time:
//
//	spec, err := generator.Generate(generator.Config{Title: "Pet Store"}, router)
//
// Routes whose handler does not implement view.Introspector are skipped.
// A route restricted with Methods() yields one operation per method; a
// route without a method matcher yields one operation per method the view
// allows.
package generator

import (
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vitalvas/typedview/oas"
	"github.com/vitalvas/typedview/schema"
	"github.com/vitalvas/typedview/view"
)

const (
	DefaultTitle   = "API"
	DefaultVersion = "1.0.0"
)

// Server is one entry of the servers list.
type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Config holds the document-level metadata.
type Config struct {
	Title          string   `yaml:"title"`
	Version        string   `yaml:"version"`
	Description    string   `yaml:"description"`
	TermsOfService string   `yaml:"terms_of_service"`
	Servers        []Server `yaml:"servers"`

	// Logger receives debug lines about skipped routes and shapes.
	// Defaults to a no-op logger.
	Logger log.Logger `yaml:"-"`
}

func (c Config) withDefaults() Config {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Logger == nil {
		c.Logger = log.NewNopLogger()
	}
	return c
}

// generation is the state of one Generate call.
type generation struct {
	spec      *oas.Spec
	reflector *schema.Reflector
	logger    log.Logger
}

// Generate walks routers and returns the document describing their typed
// views. The first failure aborts generation.
func Generate(cfg Config, routers ...*mux.Router) (*oas.Spec, error) {
	cfg = cfg.withDefaults()

	g := &generation{
		spec:      oas.New(),
		reflector: schema.NewReflector(),
		logger:    cfg.Logger,
	}

	if err := g.info(cfg); err != nil {
		return nil, err
	}

	// Present even when empty.
	g.spec.Paths()
	g.spec.Components().Schemas()
	g.spec.Components().SecuritySchemes()

	for _, router := range routers {
		if router == nil {
			continue
		}
		if err := router.Walk(g.walk); err != nil {
			return nil, err
		}
	}

	return g.spec, nil
}

func (g *generation) info(cfg Config) error {
	info := g.spec.Info()
	info.SetTitle(cfg.Title)
	info.SetVersion(cfg.Version)
	if cfg.Description != "" {
		info.SetDescription(cfg.Description)
	}
	if cfg.TermsOfService != "" {
		info.SetTermsOfService(cfg.TermsOfService)
	}

	if len(cfg.Servers) == 0 {
		return nil
	}

	servers := g.spec.Servers()
	for i, s := range cfg.Servers {
		server, err := servers.At(i)
		if err != nil {
			return errors.Wrap(err, "servers")
		}
		server.SetURL(s.URL)
		if s.Description != "" {
			server.SetDescription(s.Description)
		}
	}

	return nil
}

func (g *generation) walk(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
	v, ok := route.GetHandler().(view.Introspector)
	if !ok {
		return nil
	}

	tpl, err := route.GetPathTemplate()
	if err != nil {
		level.Debug(g.logger).Log("msg", "skipping route without path template", "route", route.GetName(), "err", err)
		return nil
	}
	path := PathTemplate(tpl)

	methods, err := route.GetMethods()
	if err != nil || len(methods) == 0 {
		methods = v.AllowedMethods()
	}

	var item *oas.PathItem
	for _, method := range methods {
		endpoint, ok := v.Endpoint(method)
		if !ok {
			level.Debug(g.logger).Log("msg", "route method has no endpoint", "path", path, "method", method)
			continue
		}

		if item == nil {
			item = g.spec.Paths().Get(path)
		}

		op, err := item.Operation(method)
		if err != nil {
			return errors.Wrapf(err, "%s %s", method, path)
		}

		if err := g.operation(op, endpoint); err != nil {
			return errors.Wrapf(err, "%s %s", strings.ToUpper(method), path)
		}
	}

	return nil
}

// mergeDefinitions moves the definitions of s into components.schemas.
// Names are unique per reflector, so a name already present holds the same
// schema.
func (g *generation) mergeDefinitions(s oas.Node) {
	if defs := schema.PopDefinitions(s); len(defs) > 0 {
		g.spec.Components().MergeSchemas(defs)
	}
}
