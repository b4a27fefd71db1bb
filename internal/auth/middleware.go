package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// unauthorizedBody is the plain-text body sent with every 401.
const unauthorizedBody = "Authentication required\nPlease provide valid credentials"

// BasicAuth returns an Echo middleware that rejects any request lacking
// valid Basic Auth credentials. There are no exempt paths: the middleware is
// meant to be installed with e.Use so status and metrics endpoints are gated
// the same as proxied traffic.
//
// On rejection the response is 401 with a WWW-Authenticate challenge for the
// given realm, and the wrapped handler never runs — no upstream call is made
// for an unauthenticated request.
func BasicAuth(creds *Credentials, realm string) echo.MiddlewareFunc {
	challenge := fmt.Sprintf("Basic realm=%q", realm)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, password, ok := c.Request().BasicAuth()
			if !ok || !creds.Verify(username, password) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
				return c.String(http.StatusUnauthorized, unauthorizedBody)
			}
			return next(c)
		}
	}
}
