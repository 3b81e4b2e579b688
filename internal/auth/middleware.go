package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// usernameKey is the echo context key the middleware stores the
// authenticated username under.
const usernameKey = "auth.username"

// Middleware returns an echo middleware that requires a valid bearer token
// and stores the token subject on the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				// Fallback for clients that cannot set headers, e.g.
				// websocket upgrades from a browser.
				token = c.QueryParam("token")
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}
			username, err := issuer.ParseToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			c.Set(usernameKey, username)
			return next(c)
		}
	}
}

// Username returns the authenticated username stored by Middleware, or "".
func Username(c echo.Context) string {
	username, _ := c.Get(usernameKey).(string)
	return username
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
