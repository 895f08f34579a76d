// Package http provides the HTTP server for the Skills Ladder API.
package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/domvito55/skillsladder-api/config"
	"github.com/domvito55/skillsladder-api/internal/domain"
	"github.com/domvito55/skillsladder-api/internal/service"
)

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Auth is a stub, disabled by default. Enabling it requires a static
	// bearer token; full user authentication is out of scope for now.
	if cfg.AuthEnabled {
		e.Use(bearerAuth(cfg.AuthToken))
	}

	h := NewHandler(svc)
	h.RegisterRoutes(e)

	return e
}

// bearerAuth returns middleware requiring a static bearer token on every
// request except the liveness probe.
func bearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/check" {
				return next(c)
			}
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			got, found := strings.CutPrefix(auth, "Bearer ")
			if !found || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, domain.Response{
					Message: "Unauthorized",
					Code:    http.StatusUnauthorized,
				})
			}
			return next(c)
		}
	}
}
