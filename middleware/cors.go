package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vitalvas/typedview/view"
)

var (
	// ErrWildcardCredentials is returned when AllowedOrigins contains "*"
	// and AllowCredentials is set.
	ErrWildcardCredentials = errors.New("cors: wildcard origin cannot be used with credentials")

	// ErrOriginPattern is returned for an origin pattern with more than one
	// wildcard.
	ErrOriginPattern = errors.New("cors: origin pattern contains multiple wildcards")
)

// CORSConfig configures CORSMiddleware.
//
// See: https://fetch.spec.whatwg.org/#http-cors-protocol
type CORSConfig struct {
	// AllowedOrigins holds exact origins, "*", or subdomain patterns such
	// as "https://*.example.com".
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedHeaders is sent on preflight. When empty the requested headers
	// are reflected.
	AllowedHeaders []string `yaml:"allowed_headers"`

	ExposeHeaders    []string `yaml:"expose_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`

	// MaxAge in seconds. Zero omits the header, negative values send 0.
	MaxAge int `yaml:"max_age"`
}

type originPattern struct {
	prefix string
	suffix string
}

type origins struct {
	exact    []string
	patterns []originPattern
	wildcard bool
}

func parseOrigins(list []string) (origins, error) {
	var o origins

	for _, raw := range list {
		if raw == "*" {
			o.wildcard = true
			continue
		}

		lower := strings.ToLower(raw)
		prefix, suffix, found := strings.Cut(lower, "*")
		if !found {
			o.exact = append(o.exact, lower)
			continue
		}
		if strings.Contains(suffix, "*") {
			return o, errors.Wrap(ErrOriginPattern, raw)
		}
		o.patterns = append(o.patterns, originPattern{prefix: prefix, suffix: suffix})
	}

	return o, nil
}

func (o origins) allows(origin string) bool {
	if o.wildcard {
		return true
	}

	lower := strings.ToLower(origin)
	if slices.Contains(o.exact, lower) {
		return true
	}

	for _, p := range o.patterns {
		if len(lower) >= len(p.prefix)+len(p.suffix) &&
			strings.HasPrefix(lower, p.prefix) &&
			strings.HasSuffix(lower, p.suffix) {
			return true
		}
	}

	return false
}

// CORSMiddleware answers preflight requests and sets the CORS response
// headers for allowed origins. Allowed methods are discovered from the
// router: method matchers of the routes matching the path, or the methods
// of a typed view mounted without one.
//
// The router's MethodNotAllowedHandler is wrapped so preflight requests to
// method-bound routes are answered too.
func CORSMiddleware(r *mux.Router, cfg CORSConfig) (mux.MiddlewareFunc, error) {
	allowed, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}
	if allowed.wildcard && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	c := &cors{cfg: cfg, origins: allowed, router: r}

	prev := r.MethodNotAllowedHandler
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if origin := req.Header.Get("Origin"); origin != "" && isPreflight(req) && c.origins.allows(origin) {
			c.preflight(w, req, origin)
			return
		}

		if prev != nil {
			prev.ServeHTTP(w, req)
			return
		}
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			origin := req.Header.Get("Origin")
			if origin == "" || !c.origins.allows(origin) {
				if !c.origins.wildcard {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, req)
				return
			}

			if isPreflight(req) {
				c.preflight(w, req, origin)
				return
			}

			c.setOrigin(w, origin)
			if len(cfg.ExposeHeaders) > 0 {
				w.Header().Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
			}

			next.ServeHTTP(w, req)
		})
	}, nil
}

type cors struct {
	cfg     CORSConfig
	origins origins
	router  *mux.Router
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

func (c *cors) setOrigin(w http.ResponseWriter, origin string) {
	if c.origins.wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}

	if c.cfg.AllowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func (c *cors) preflight(w http.ResponseWriter, r *http.Request, origin string) {
	c.setOrigin(w, origin)

	h := w.Header()
	if methods := c.methods(r); len(methods) > 0 {
		h.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
	}

	if len(c.cfg.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(c.cfg.AllowedHeaders, ","))
	} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		h.Set("Access-Control-Allow-Headers", requested)
	}

	switch {
	case c.cfg.MaxAge > 0:
		h.Set("Access-Control-Max-Age", strconv.Itoa(c.cfg.MaxAge))
	case c.cfg.MaxAge < 0:
		h.Set("Access-Control-Max-Age", "0")
	}

	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
	w.WriteHeader(http.StatusNoContent)
}

// methods returns the methods served for the request path, in walk order
// and without duplicates.
func (c *cors) methods(r *http.Request) []string {
	var methods []string
	add := func(m string) {
		if !slices.Contains(methods, m) {
			methods = append(methods, m)
		}
	}

	_ = c.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		bound, err := route.GetMethods()
		if err != nil {
			intro, ok := route.GetHandler().(view.Introspector)
			if !ok || !route.Match(r, &mux.RouteMatch{}) {
				return nil
			}
			for _, m := range intro.AllowedMethods() {
				add(m)
			}
			return nil
		}

		for _, m := range bound {
			candidate := r.Clone(r.Context())
			candidate.Method = m
			if route.Match(candidate, &mux.RouteMatch{}) {
				add(m)
			}
		}
		return nil
	})

	return methods
}
