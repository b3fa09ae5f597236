package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
)

// RecoveryConfig configures RecoveryMiddleware.
type RecoveryConfig struct {
	// Logger receives one error line per recovered panic. Defaults to a
	// no-op logger.
	Logger log.Logger

	// Stack adds the goroutine stack to the log line.
	Stack bool
}

// RecoveryMiddleware answers 500 Internal Server Error when a downstream
// handler panics.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}

				kv := []any{
					"msg", "recovered from panic",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rv,
				}
				if id := RequestIDFromContext(r.Context()); id != "" {
					kv = append(kv, "request_id", id)
				}
				if cfg.Stack {
					kv = append(kv, "stack", string(debug.Stack()))
				}
				level.Error(logger).Log(kv...)

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
