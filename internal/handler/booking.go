package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-back-office/internal/queue"
	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/service"
)

// BookingHandler serves seat booking. The heavy lifting is in the
// booking service; the handler binds the request, invokes it and
// publishes the confirmation event after commit.
type BookingHandler struct {
	Svc   *service.BookingService
	Users *repository.UserRepo
}

func NewBookingHandler(svc *service.BookingService, users *repository.UserRepo) *BookingHandler {
	return &BookingHandler{Svc: svc, Users: users}
}

// bookItemReq is one requested seat. Every item names its session, so
// one call may book seats across several sessions.
type bookItemReq struct {
	SessionID uint64 `json:"session_id"`
	SeatRow   uint32 `json:"seat_row"`
	SeatCol   uint32 `json:"seat_col"`
	IsVIP     bool   `json:"is_vip"`
}

// Book reserves a batch of seats for the authenticated customer. The
// whole batch succeeds or nothing is booked, across all sessions it
// touches.
func (h *BookingHandler) Book(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req []bookItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	for _, item := range req {
		if item.SessionID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required on every seat"})
		}
	}

	requests := make([]service.SeatRequest, 0, len(req))
	for _, item := range req {
		requests = append(requests, service.SeatRequest{
			SessionID: item.SessionID,
			Row:       item.SeatRow,
			Col:       item.SeatCol,
			IsVIP:     item.IsVIP,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := h.Svc.Book(ctx, uid, requests)
	if err != nil {
		return respondDomainError(c, err)
	}

	// Fire-and-forget: the booking is committed, a broker outage only
	// delays the confirmation letter.
	email := ""
	if u, err := h.Users.GetByID(ctx, uid); err == nil {
		email = u.Email
	}
	booked := make([]queue.BookedSession, 0, len(result.Lines))
	sessionsOut := make([]echo.Map, 0, len(result.Lines))
	for _, line := range result.Lines {
		booked = append(booked, queue.BookedSession{
			SessionID:  line.SessionID,
			HallName:   line.HallName,
			MovieTitle: line.MovieTitle,
			StartsAt:   line.StartsAt,
			Seats:      line.Seats,
		})
		sessionsOut = append(sessionsOut, echo.Map{
			"session_id": line.SessionID,
			"seats":      line.Seats,
		})
	}
	_ = service.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		UserID:      uid,
		UserEmail:   email,
		Sessions:    booked,
		Total:       result.Total,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "booking confirmed",
		"count":    result.Count,
		"total":    result.Total,
		"sessions": sessionsOut,
	})
}
