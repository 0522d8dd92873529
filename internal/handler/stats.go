package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
)

// StatsHandler serves the admin reporting endpoints.
type StatsHandler struct {
	Stats *repository.StatsRepo
	Clock *schedule.Clock
}

func NewStatsHandler(stats *repository.StatsRepo, clock *schedule.Clock) *StatsHandler {
	return &StatsHandler{Stats: stats, Clock: clock}
}

// queryDays reads a positive ?days= parameter with a default.
func queryDays(c echo.Context, def int) (int, bool) {
	raw := strings.TrimSpace(c.QueryParam("days"))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// TopFilms ranks films by tickets sold over the last N days (default 30).
func (h *StatsHandler) TopFilms(c echo.Context) error {
	days, ok := queryDays(c, 30)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid days"})
	}
	limit := 10
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := h.Stats.TopFilms(ctx, since, limit)
	if err != nil {
		return respondDomainError(c, err)
	}
	type item struct {
		MovieID uint64  `json:"movie_id"`
		Name    string  `json:"name"`
		Tickets int     `json:"tickets"`
		Revenue float64 `json:"revenue"`
	}
	out := make([]item, 0, len(rows))
	for _, r := range rows {
		out = append(out, item{MovieID: r.MovieID, Name: r.Name, Tickets: r.Tickets, Revenue: r.Revenue})
	}
	return c.JSON(http.StatusOK, out)
}

// Money reports daily ticket revenue over an optional local-date
// window; the default is the last 30 days.
func (h *StatsHandler) Money(c echo.Context) error {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := strings.TrimSpace(c.QueryParam("start_date")); raw != "" {
		t, err := h.Clock.NormalizeBound(raw, false)
		if err != nil {
			return respondDomainError(c, err)
		}
		from = t
	}
	if raw := strings.TrimSpace(c.QueryParam("end_date")); raw != "" {
		t, err := h.Clock.NormalizeBound(raw, true)
		if err != nil {
			return respondDomainError(c, err)
		}
		to = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Stats.Revenue(ctx, from, to)
	if err != nil {
		return respondDomainError(c, err)
	}
	type item struct {
		Day     string  `json:"day"`
		Tickets int     `json:"tickets"`
		Revenue float64 `json:"revenue"`
	}
	out := make([]item, 0, len(rows))
	for _, r := range rows {
		out = append(out, item{Day: r.Day, Tickets: r.Tickets, Revenue: r.Revenue})
	}
	return c.JSON(http.StatusOK, out)
}

// Occupancy reports per-hall seat occupancy over the last N days
// (default 30).
func (h *StatsHandler) Occupancy(c echo.Context) error {
	days, ok := queryDays(c, 30)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid days"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := h.Stats.Occupancy(ctx, since)
	if err != nil {
		return respondDomainError(c, err)
	}
	type item struct {
		HallID    uint64  `json:"hall_id"`
		Name      string  `json:"name"`
		Sold      int     `json:"sold"`
		Capacity  int     `json:"capacity"`
		Occupancy float64 `json:"occupancy"`
	}
	out := make([]item, 0, len(rows))
	for _, r := range rows {
		it := item{HallID: r.HallID, Name: r.Name, Sold: r.Sold, Capacity: r.Capacity}
		if r.Capacity > 0 {
			it.Occupancy = float64(r.Sold) / float64(r.Capacity)
		}
		out = append(out, it)
	}
	return c.JSON(http.StatusOK, out)
}
