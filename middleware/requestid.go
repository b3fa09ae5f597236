package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultRequestIDHeader carries the request id when no header is configured.
const DefaultRequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the request id stored by RequestIDMiddleware,
// or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// RequestIDConfig configures RequestIDMiddleware.
type RequestIDConfig struct {
	// HeaderName defaults to DefaultRequestIDHeader.
	HeaderName string `yaml:"header_name"`

	// Generate returns a new id. Defaults to NewUUIDv7.
	Generate func(r *http.Request) string `yaml:"-"`

	// TrustIncoming reuses the id of the incoming request header.
	TrustIncoming bool `yaml:"trust_incoming"`
}

// RequestIDMiddleware sets a request id on the request header, the response
// header and the request context.
func RequestIDMiddleware(cfg RequestIDConfig) mux.MiddlewareFunc {
	header := cfg.HeaderName
	if header == "" {
		header = DefaultRequestIDHeader
	}

	generate := cfg.Generate
	if generate == nil {
		generate = NewUUIDv7
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.TrustIncoming {
				id = r.Header.Get(header)
			}
			if id == "" {
				id = generate(r)
			}

			if id != "" {
				r.Header.Set(header, id)
				w.Header().Set(header, id)
				r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewUUIDv4 returns a random UUID.
func NewUUIDv4(_ *http.Request) string {
	return uuid.New().String()
}

// NewUUIDv7 returns a time-ordered UUID.
func NewUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
