package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-back-office/internal/model"
	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
	"github.com/iliyamo/cinema-back-office/internal/service"
)

// SessionHandler serves the scheduling endpoints: batch creation and
// partial updates go through the session service so they run in one
// transaction; the read side talks to the repositories directly.
type SessionHandler struct {
	Svc      *service.SessionService
	Sessions *repository.SessionRepo
	Halls    *repository.HallRepo
	Bookings *repository.BookingRepo
	Catalog  *repository.CatalogRepo
	Clock    *schedule.Clock
}

func NewSessionHandler(svc *service.SessionService, sessions *repository.SessionRepo, halls *repository.HallRepo, bookings *repository.BookingRepo, catalog *repository.CatalogRepo, clock *schedule.Clock) *SessionHandler {
	return &SessionHandler{Svc: svc, Sessions: sessions, Halls: halls, Bookings: bookings, Catalog: catalog, Clock: clock}
}

// ----- DTOs -----

type addSessionReq struct {
	MovieID       uint64  `json:"movie_id"`
	Date          string  `json:"date"`
	Price         float64 `json:"price"`
	PriceVIP      float64 `json:"price_VIP"`
	HallID        uint64  `json:"hall_id"`
	SessionTypeID uint64  `json:"session_type_id"`
}

type updateSessionFields struct {
	Date          *string  `json:"date"`
	HallID        *uint64  `json:"hall_id"`
	SessionTypeID *uint64  `json:"session_type_id"`
	Price         *float64 `json:"price"`
	PriceVIP      *float64 `json:"price_VIP"`
	IsDeleted     *bool    `json:"is_deleted"`
}

type updateSessionByIDReq struct {
	ID uint64 `json:"id"`
	updateSessionFields
}

type sessionTypeResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type sessionListItem struct {
	ID   uint64 `json:"id"`
	Date string `json:"date"` // cinema-local
}

type seatResp struct {
	Row      uint32 `json:"row"`
	Col      uint32 `json:"col"`
	IsVIP    bool   `json:"is_VIP"`
	IsBooked bool   `json:"is_booked"`
}

type sessionInfoResp struct {
	HallName      string     `json:"hall_name"`
	DateTime      string     `json:"date_time"`
	Price         float64    `json:"price"`
	PriceVIP      float64    `json:"price_VIP"`
	SessionTypeID uint64     `json:"session_type_id"`
	IsDeleted     bool       `json:"is_deleted"`
	Seats         []seatResp `json:"seats"`
}

func toPatch(id uint64, f updateSessionFields) service.SessionPatch {
	return service.SessionPatch{
		ID:            id,
		Date:          f.Date,
		HallID:        f.HallID,
		SessionTypeID: f.SessionTypeID,
		Price:         f.Price,
		PriceVIP:      f.PriceVIP,
		IsDeleted:     f.IsDeleted,
	}
}

// GetSessionTypes lists the screening formats.
func (h *SessionHandler) GetSessionTypes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Catalog.SessionTypes(ctx)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]sessionTypeResp, 0, len(types))
	for _, t := range types {
		out = append(out, sessionTypeResp{ID: t.ID, Name: t.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// AddSessions schedules a batch of sessions atomically (admin only).
func (h *SessionHandler) AddSessions(c echo.Context) error {
	var reqs []addSessionReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	inputs := make([]service.AddSessionInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, service.AddSessionInput{
			MovieID:       r.MovieID,
			Date:          r.Date,
			Price:         r.Price,
			PriceVIP:      r.PriceVIP,
			HallID:        r.HallID,
			SessionTypeID: r.SessionTypeID,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	n, err := h.Svc.AddSessions(ctx, inputs)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": fmt.Sprintf("successfully added %d sessions", n)})
}

// GetSessionsByMovie lists upcoming ACTIVE sessions of a movie, with
// an optional local-date window. Bare dates in the query are expanded
// to cover whole days.
func (h *SessionHandler) GetSessionsByMovie(c echo.Context) error {
	movieID := pathID(c, "movie_id")
	if movieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	var from, to *time.Time
	if raw := strings.TrimSpace(c.QueryParam("start_date")); raw != "" {
		t, err := h.Clock.NormalizeBound(raw, false)
		if err != nil {
			return respondDomainError(c, err)
		}
		from = &t
	} else {
		now := time.Now().UTC()
		from = &now
	}
	if raw := strings.TrimSpace(c.QueryParam("end_date")); raw != "" {
		t, err := h.Clock.NormalizeBound(raw, true)
		if err != nil {
			return respondDomainError(c, err)
		}
		to = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sessions, err := h.Sessions.ListByMovie(ctx, movieID, from, to)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]sessionListItem, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionListItem{ID: s.ID, Date: h.Clock.FormatLocal(s.StartsAt)})
	}
	return c.JSON(http.StatusOK, out)
}

// GetSessionByID returns the session detail with its booked-seat map.
func (h *SessionHandler) GetSessionByID(c echo.Context) error {
	id := pathID(c, "session_id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Sessions.GetByID(ctx, id)
	if err != nil {
		return respondDomainError(c, err)
	}
	hall, err := h.Halls.GetByID(ctx, sess.HallID)
	if err != nil {
		return respondDomainError(c, err)
	}
	bookings, err := h.Bookings.ListBySession(ctx, id)
	if err != nil {
		return respondDomainError(c, err)
	}

	resp := sessionInfoResp{
		HallName:      hall.Name,
		DateTime:      h.Clock.FormatLocal(sess.StartsAt),
		Price:         sess.Price,
		PriceVIP:      sess.PriceVIP,
		SessionTypeID: sess.SessionTypeID,
		IsDeleted:     sess.Status != model.SessionActive,
		Seats:         make([]seatResp, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Seats = append(resp.Seats, seatResp{Row: b.SeatRow, Col: b.SeatCol, IsVIP: b.IsVIP, IsBooked: true})
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateSession applies a partial update to one session (admin only).
func (h *SessionHandler) UpdateSession(c echo.Context) error {
	id := pathID(c, "session_id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	var req updateSessionFields
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.UpdateSession(ctx, toPatch(id, req)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "session updated"})
}

// UpdateSessions applies a batch of partial updates in one shared
// transaction (admin only); if any element fails nothing is kept.
func (h *SessionHandler) UpdateSessions(c echo.Context) error {
	var reqs []updateSessionByIDReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	patches := make([]service.SessionPatch, 0, len(reqs))
	for _, r := range reqs {
		if r.ID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "session id required"})
		}
		patches = append(patches, toPatch(r.ID, r.updateSessionFields))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Svc.UpdateSessions(ctx, patches); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("successfully updated %d sessions", len(patches))})
}
