// Package auth provides JWT bearer and cookie authentication for typed views.
//
// A token is accepted from the "Authorization: Bearer <token>" header or from
// the access cookie. Views declare the requirement with view.Auth so the
// generated document lists the bearerAuth and cookieAuth security schemes,
// and login-like views declare view.AuthProvider so the response that sets
// the cookie documents its Set-Cookie header.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const (
	// DefaultCookieName is the access cookie name used when none is configured.
	DefaultCookieName = "access_token"

	// DefaultTTL is the lifetime of issued tokens when none is configured.
	DefaultTTL = time.Hour
)

var (
	// ErrNoToken is returned when the request carries neither a bearer token
	// nor an access cookie.
	ErrNoToken = errors.New("auth: missing token")

	// ErrInvalidToken is returned when the token fails verification.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrNoSecret is returned when signing or verification is attempted
	// without a secret.
	ErrNoSecret = errors.New("auth: secret must be set")
)

// Claims are the claims carried by access tokens.
type Claims = jwt.RegisteredClaims

type claimsKey struct{}

// ClaimsFromContext returns the claims stored by Middleware or a view with
// authentication enabled.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// Config configures token verification and issuing.
type Config struct {
	// Enabled turns authentication on. A disabled config accepts every
	// request and adds nothing to the generated document.
	Enabled bool `yaml:"enabled"`

	// Secret is the HMAC key for HS256 tokens.
	Secret []byte `yaml:"-"`

	// CookieName is the access cookie. Defaults to DefaultCookieName.
	CookieName string `yaml:"cookie_name"`

	// TTL is the lifetime of issued tokens. Defaults to DefaultTTL.
	TTL time.Duration `yaml:"ttl"`

	// Issuer is set as the "iss" claim of issued tokens and required on
	// verified ones when not empty.
	Issuer string `yaml:"issuer"`
}

// AccessCookieName returns the configured cookie name or the default.
func (c Config) AccessCookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

// Issue signs a token for subject valid from now for the configured TTL.
func (c Config) Issue(subject string, now time.Time) (string, error) {
	if len(c.Secret) == 0 {
		return "", ErrNoSecret
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	claims := &Claims{
		Subject:   subject,
		Issuer:    c.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", errors.Wrap(err, "auth: sign token")
	}

	return signed, nil
}

// Cookie issues a token for subject and wraps it in the access cookie.
func (c Config) Cookie(subject string, now time.Time) (*http.Cookie, error) {
	token, err := c.Issue(subject, now)
	if err != nil {
		return nil, err
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &http.Cookie{
		Name:     c.AccessCookieName(),
		Value:    token,
		Path:     "/",
		Expires:  now.Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Verify extracts and validates the token of r.
func (c Config) Verify(r *http.Request) (*Claims, error) {
	if len(c.Secret) == 0 {
		return nil, ErrNoSecret
	}

	raw, err := c.extractToken(r)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.Secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// extractToken prefers the bearer header over the cookie.
func (c Config) extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", errors.Wrap(ErrInvalidToken, "expected Bearer authorization scheme")
		}
		return strings.TrimSpace(token), nil
	}

	if cookie, err := r.Cookie(c.AccessCookieName()); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", ErrNoToken
}

// Middleware returns a middleware that rejects unauthenticated requests with
// 401 Unauthorized and stores the verified claims in the request context.
// A disabled config returns a pass-through middleware.
func Middleware(cfg Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := cfg.Verify(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// ProviderConfig describes a view that hands out the access cookie.
type ProviderConfig struct {
	// StatusCode is the response status that carries the Set-Cookie header.
	// Defaults to 200.
	StatusCode int

	// CookieExample is the documented example Set-Cookie value.
	CookieExample string
}

// Status returns the configured status code or 200.
func (p ProviderConfig) Status() int {
	if p.StatusCode == 0 {
		return http.StatusOK
	}
	return p.StatusCode
}
