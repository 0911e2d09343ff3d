package http

import (
	"net/http"

	"bookings/entity"

	"github.com/labstack/echo/v4"
)

// The identity layer in front of this service authenticates the caller and
// forwards the principal in trusted headers. Tenant scope only ever comes
// from here, never from request bodies.
const (
	headerKeyUserID   = "X-User-ID"
	headerKeyUserRole = "X-User-Role"
	headerKeyTenantID = "X-Tenant-ID"
)

const principalContextKey = "principal"

func principalMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := entity.Principal{
			ID:       c.Request().Header.Get(headerKeyUserID),
			Role:     c.Request().Header.Get(headerKeyUserRole),
			TenantID: c.Request().Header.Get(headerKeyTenantID),
		}

		if p.ID == "" || p.TenantID == "" {
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "authentication required",
			}
		}
		if p.Role == "" {
			p.Role = entity.RoleAttendee
		}

		c.Set(principalContextKey, p)
		return next(c)
	}
}

func principalFrom(c echo.Context) entity.Principal {
	p, _ := c.Get(principalContextKey).(entity.Principal)
	return p
}
