package http

import (
	"context"
	"net/http"

	"bookings/booking"
	"bookings/entity"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/labstack/echo/v4"
)

var ErrServerClosed = http.ErrServerClosed

type EventCreator interface {
	Add(ctx context.Context, ev entity.Event) error
}

func NewRouter(svc *booking.Service, events EventCreator) *echo.Echo {
	server := commonHTTP.NewEcho()

	server.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	h := handler{
		svc:    svc,
		events: events,
	}

	authed := server.Group("", principalMiddleware)

	authed.POST("/events", h.CreateEvent)
	authed.GET("/events/:id/stats", h.EventStats)
	authed.POST("/events/:id/promote-waitlist", h.PromoteWaitlist)

	authed.POST("/bookings", h.CreateBooking)
	authed.POST("/bookings/:id/cancel", h.CancelBooking)
	authed.PATCH("/bookings/:id", h.UpdateBooking)
	authed.GET("/my-bookings", h.ListMyBookings)
	authed.GET("/bookings/:id/history", h.BookingHistory)

	authed.GET("/my-notifications", h.ListMyNotifications)
	authed.POST("/notifications/:id/read", h.MarkNotificationRead)

	authed.GET("/activity", h.RecentActivity)

	return server
}
