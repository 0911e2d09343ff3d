package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bookings/booking"
	"bookings/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type handler struct {
	svc    *booking.Service
	events EventCreator
}

type createEventRequest struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Capacity int       `json:"capacity"`
}

func (h handler) CreateEvent(c echo.Context) error {
	p := principalFrom(c)
	if p.Role != entity.RoleOrganizer && p.Role != entity.RoleAdmin {
		return &echo.HTTPError{
			Code:    http.StatusForbidden,
			Message: "only organizers can create events",
		}
	}

	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("failed to parse request", err)
	}
	if req.Title == "" || req.Capacity < 1 || req.Date.IsZero() {
		return badRequest("title, future date and positive capacity are required", nil)
	}

	ev := entity.Event{
		ID:          uuid.NewString(),
		TenantID:    p.TenantID,
		OrganizerID: p.ID,
		Title:       req.Title,
		Date:        req.Date,
		Capacity:    req.Capacity,
	}

	if err := h.events.Add(c.Request().Context(), ev); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, ev)
}

type createBookingRequest struct {
	EventID string `json:"event_id"`
}

func (h handler) CreateBooking(c echo.Context) error {
	p := principalFrom(c)

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("failed to parse request", err)
	}
	if req.EventID == "" {
		return badRequest("event_id is required", nil)
	}

	b, err := h.svc.CreateBooking(c.Request().Context(), p.ID, req.EventID, p.TenantID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, b)
}

func (h handler) CancelBooking(c echo.Context) error {
	p := principalFrom(c)

	b, err := h.svc.CancelBooking(c.Request().Context(), c.Param("id"), p.ID, p.TenantID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, b)
}

type updateBookingRequest struct {
	EventID  *string `json:"event_id"`
	UserID   *string `json:"user_id"`
	TenantID *string `json:"tenant_id"`
	Status   *string `json:"status"`
}

func (h handler) UpdateBooking(c echo.Context) error {
	p := principalFrom(c)

	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("failed to parse request", err)
	}

	patch := booking.Patch{
		EventID:  req.EventID,
		UserID:   req.UserID,
		TenantID: req.TenantID,
		Status:   req.Status,
	}

	b, err := h.svc.UpdateBooking(c.Request().Context(), c.Param("id"), patch, p)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, b)
}

func (h handler) ListMyBookings(c echo.Context) error {
	p := principalFrom(c)

	status := c.QueryParam("status")
	switch status {
	case "", entity.StatusConfirmed, entity.StatusWaitlisted, entity.StatusCanceled:
	default:
		return badRequest(fmt.Sprintf("unknown status filter %q", status), nil)
	}

	bookings, err := h.svc.ListMyBookings(c.Request().Context(), p.ID, p.TenantID, status)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"bookings": bookings})
}

func (h handler) PromoteWaitlist(c echo.Context) error {
	p := principalFrom(c)

	promoted, err := h.svc.PromoteWaitlist(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return domainError(err)
	}

	if promoted == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"promoted": false,
			"message":  "no waitlisted bookings to promote",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"promoted": true,
		"booking":  promoted,
	})
}

func (h handler) EventStats(c echo.Context) error {
	p := principalFrom(c)

	stats, err := h.svc.EventStats(c.Request().Context(), c.Param("id"), p.TenantID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, stats)
}

func (h handler) ListMyNotifications(c echo.Context) error {
	p := principalFrom(c)

	unreadOnly := c.QueryParam("unread_only") == "true"

	notifications, unread, err := h.svc.ListMyNotifications(c.Request().Context(), p.ID, p.TenantID, unreadOnly)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h handler) MarkNotificationRead(c echo.Context) error {
	p := principalFrom(c)

	n, err := h.svc.MarkNotificationRead(c.Request().Context(), c.Param("id"), p.ID, p.TenantID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, n)
}

func (h handler) BookingHistory(c echo.Context) error {
	p := principalFrom(c)

	entries, err := h.svc.BookingHistory(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"history": entries})
}

func (h handler) RecentActivity(c echo.Context) error {
	p := principalFrom(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := h.svc.RecentActivity(c.Request().Context(), p.TenantID, limit)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"activity": entries})
}

func badRequest(message string, err error) *echo.HTTPError {
	return &echo.HTTPError{
		Code:     http.StatusBadRequest,
		Message:  message,
		Internal: err,
	}
}

// domainError maps error kinds to status codes. This mapping lives only
// here; the engine itself never deals in HTTP terms.
func domainError(err error) *echo.HTTPError {
	code := http.StatusInternalServerError

	switch booking.KindOf(err) {
	case booking.KindNotFound:
		code = http.StatusNotFound
	case booking.KindAccessDenied, booking.KindTenantMismatch:
		code = http.StatusForbidden
	case booking.KindDuplicateBooking, booking.KindAlreadyCanceled, booking.KindCapacityExceeded:
		code = http.StatusConflict
	case booking.KindInvalidTransition, booking.KindImmutableFieldViolation, booking.KindPastEvent:
		code = http.StatusUnprocessableEntity
	case booking.KindUnavailable:
		code = http.StatusServiceUnavailable
	}

	// Store errors never leak beyond the Unavailable classification.
	message := "service temporarily unavailable"
	var e *booking.Error
	if errors.As(err, &e) && e.Kind != booking.KindUnavailable {
		message = e.Message
	}

	return &echo.HTTPError{
		Code:     code,
		Message:  message,
		Internal: err,
	}
}
