// Package oasui serves the generated OpenAPI document and a documentation
// browser page.
//
// Setup registers, under the base path (default "/oas"):
//
//	<base>/spec        OpenAPI document as JSON
//	<base>/spec.yaml   OpenAPI document as YAML
//	<base>, <base>/    documentation page
//	<base>/static/...  documentation page assets
//
// The document is generated again on every request, so routes registered
// after Setup are included.
package oasui

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/typedview/generator"
)

const (
	DefaultBasePath = "/oas"

	routeSpec   = "oas.spec"
	routeStatic = "oas.static"
)

var (
	//go:embed index.gohtml
	indexContent string

	//go:embed static
	staticFiles embed.FS

	indexTemplate = template.Must(template.New("index").Parse(indexContent))

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Config configures the documentation endpoints.
type Config struct {
	// BasePath is the prefix of every endpoint. Defaults to DefaultBasePath.
	BasePath string `yaml:"base_path"`

	// Title is the page title. Defaults to the document title.
	Title string `yaml:"title"`

	// Document holds the document-level metadata passed to the generator.
	Document generator.Config `yaml:"document"`

	// Registerer receives the generation metrics. Metrics are not
	// registered when nil.
	Registerer prometheus.Registerer `yaml:"-"`

	// Logger defaults to a no-op logger.
	Logger log.Logger `yaml:"-"`
}

func (c Config) withDefaults() Config {
	c.BasePath = strings.TrimRight(c.BasePath, "/")
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Logger == nil {
		c.Logger = log.NewNopLogger()
	}
	if c.Document.Logger == nil {
		c.Document.Logger = c.Logger
	}
	if c.Title == "" {
		c.Title = c.Document.Title
	}
	if c.Title == "" {
		c.Title = generator.DefaultTitle
	}
	return c
}

type handler struct {
	cfg     Config
	apps    []*mux.Router
	router  *mux.Router
	metrics *metrics
}

// Setup registers the documentation endpoints on router. The document
// describes apps, or router itself when no apps are given.
func Setup(router *mux.Router, cfg Config, apps ...*mux.Router) {
	cfg = cfg.withDefaults()
	if len(apps) == 0 {
		apps = []*mux.Router{router}
	}

	h := &handler{
		cfg:     cfg,
		apps:    apps,
		router:  router,
		metrics: newMetrics(cfg.Registerer),
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	base := cfg.BasePath
	router.HandleFunc(base+"/spec", h.serveJSON).Methods(http.MethodGet).Name(routeSpec)
	router.HandleFunc(base+"/spec.yaml", h.serveYAML).Methods(http.MethodGet)
	router.PathPrefix(base + "/static/").
		Handler(http.StripPrefix(base+"/static/", http.FileServer(http.FS(static)))).
		Methods(http.MethodGet).
		Name(routeStatic)
	router.HandleFunc(base, h.serveIndex).Methods(http.MethodGet)
	router.HandleFunc(base+"/", h.serveIndex).Methods(http.MethodGet)
}

// generate builds the document and records metrics for format.
func (h *handler) generate(format string) (any, error) {
	start := time.Now()
	spec, err := generator.Generate(h.cfg.Document, h.apps...)
	h.metrics.generationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		h.metrics.generationsTotal.WithLabelValues(format, resultError).Inc()
		return nil, err
	}

	h.metrics.generationsTotal.WithLabelValues(format, resultSuccess).Inc()
	return spec.Node(), nil
}

func (h *handler) serveJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := h.generate("json")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := json.Marshal(doc)
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "marshal json"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handler) serveYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := h.generate("yaml")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "marshal yaml"))
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type indexData struct {
	Title     string
	SpecURL   string
	StaticURL string
}

func (h *handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	specURL, err := h.router.Get(routeSpec).URLPath()
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "spec url"))
		return
	}

	staticURL, err := h.router.Get(routeStatic).URLPath()
	if err != nil {
		h.fail(w, r, errors.Wrap(err, "static url"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{
		Title:     h.cfg.Title,
		SpecURL:   specURL.String(),
		StaticURL: staticURL.String(),
	}); err != nil {
		level.Error(h.cfg.Logger).Log("msg", "failed to render docs page", "err", err)
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	level.Error(h.cfg.Logger).Log("msg", "failed to serve OpenAPI document", "path", r.URL.Path, "err", err)
	http.Error(w, "failed to generate OpenAPI document", http.StatusInternalServerError)
}
