package generator

import "github.com/vitalvas/typedview/oas"

const (
	BearerAuth = "bearerAuth"
	CookieAuth = "cookieAuth"
)

// security registers the bearer and cookie schemes once per document and
// lists both as alternatives on op.
func (g *generation) security(op *oas.Operation, cookieName string) {
	components := g.spec.Components()

	components.AddSecurityScheme(BearerAuth, oas.Node{
		"type":         "http",
		"scheme":       "bearer",
		"bearerFormat": "JWT",
	})
	components.AddSecurityScheme(CookieAuth, oas.Node{
		"type": "apiKey",
		"in":   "cookie",
		"name": cookieName,
	})

	op.Security().Get(BearerAuth)
	op.Security().Get(CookieAuth)
}
