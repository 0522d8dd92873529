package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
	"github.com/iliyamo/cinema-back-office/internal/service"
	"github.com/iliyamo/cinema-back-office/internal/tmdb"
)

// upcomingHorizon is how far ahead the movie listing looks for titles
// whose visible window has not opened yet.
const upcomingHorizon = 14 * 24 * time.Hour

// MovieHandler serves the repertoire endpoints. Creation goes through
// the session service so the movie and its first sessions land
// atomically; reads and the partial update talk to the repositories.
type MovieHandler struct {
	Svc      *service.SessionService
	Movies   *repository.MovieRepo
	Sessions *repository.SessionRepo
	Catalog  *repository.CatalogRepo
	TMDB     *tmdb.Client
	Clock    *schedule.Clock
}

func NewMovieHandler(svc *service.SessionService, movies *repository.MovieRepo, sessions *repository.SessionRepo, catalog *repository.CatalogRepo, client *tmdb.Client, clock *schedule.Clock) *MovieHandler {
	return &MovieHandler{Svc: svc, Movies: movies, Sessions: sessions, Catalog: catalog, TMDB: client, Clock: clock}
}

// ----- DTOs -----

type addMovieReq struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Duration    uint32          `json:"duration"`
	Year        uint16          `json:"year"`
	AgeRateID   uint64          `json:"age_rate_id"`
	PosterURL   *string         `json:"poster_url"`
	Genres      []string        `json:"genres"`
	Actors      []string        `json:"actors"`
	Directors   []string        `json:"directors"`
	Studios     []string        `json:"studios"`
	Sessions    []addSessionReq `json:"sessions"`
}

type updateMovieReq struct {
	Name           *string `json:"name"`
	AgeRateID      *uint64 `json:"age_rate_id"`
	Description    *string `json:"description"`
	ExpirationDate *string `json:"expiration_date"`
}

type nearestSessionResp struct {
	ID            uint64 `json:"id"`
	Date          string `json:"date"`
	SessionTypeID uint64 `json:"session_type_id"`
}

type movieListItem struct {
	ID             uint64              `json:"id"`
	Name           string              `json:"name"`
	Duration       uint32              `json:"duration"`
	Year           uint16              `json:"year"`
	PosterURL      *string             `json:"poster_url"`
	Genres         []string            `json:"genres"`
	NearestSession *nearestSessionResp `json:"nearest_session"`
}

type movieDetailResp struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Duration    uint32   `json:"duration"`
	Year        uint16   `json:"year"`
	AgeRateID   uint64   `json:"age_rate_id"`
	PosterURL   *string  `json:"poster_url"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
	Directors   []string `json:"directors"`
	Studios     []string `json:"studios"`
	Rating      *float64 `json:"rating"`
}

// GetMovies lists movies whose visible window covers now plus those
// opening within two weeks, each with its nearest upcoming session.
func (h *MovieHandler) GetMovies(c echo.Context) error {
	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("qtty")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid qtty"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	movies, err := h.Movies.ListActiveAndUpcoming(ctx, now, now.Add(upcomingHorizon), limit)
	if err != nil {
		return respondDomainError(c, err)
	}

	out := make([]movieListItem, 0, len(movies))
	for _, m := range movies {
		item := movieListItem{
			ID:        m.ID,
			Name:      m.Name,
			Duration:  m.Duration,
			Year:      m.Year,
			PosterURL: m.PosterURL,
		}
		if item.Genres, err = h.Movies.GenresByMovie(ctx, m.ID); err != nil {
			return respondDomainError(c, err)
		}
		upcoming, err := h.Sessions.ListByMovie(ctx, m.ID, &now, nil)
		if err != nil {
			return respondDomainError(c, err)
		}
		if len(upcoming) > 0 {
			s := upcoming[0]
			item.NearestSession = &nearestSessionResp{
				ID:            s.ID,
				Date:          h.Clock.FormatLocal(s.StartsAt),
				SessionTypeID: s.SessionTypeID,
			}
		}
		out = append(out, item)
	}
	return c.JSON(http.StatusOK, out)
}

// GetMovie returns a movie with its associations and a best-effort
// TMDB rating.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id := pathID(c, "movie_id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return respondDomainError(c, err)
	}

	resp := movieDetailResp{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Duration:    m.Duration,
		Year:        m.Year,
		AgeRateID:   m.RateID,
		PosterURL:   m.PosterURL,
	}
	if resp.Genres, err = h.Movies.GenresByMovie(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	if resp.Actors, err = h.Movies.ActorsByMovie(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	if resp.Directors, err = h.Movies.DirectorsByMovie(ctx, id); err != nil {
		return respondDomainError(c, err)
	}
	if resp.Studios, err = h.Movies.StudiosByMovie(ctx, id); err != nil {
		return respondDomainError(c, err)
	}

	// External lookups must never fail the detail page.
	if rating, err := h.TMDB.Rating(ctx, m.Name, int(m.Year)); err == nil {
		resp.Rating = &rating
	}
	return c.JSON(http.StatusOK, resp)
}

// FindMovie proxies a title/year lookup to TMDB for the admin UI.
func (h *MovieHandler) FindMovie(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	year := 0
	if raw := strings.TrimSpace(c.QueryParam("year")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		year = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.TMDB.SearchMovie(ctx, title, year)
	if err != nil {
		switch {
		case errors.Is(err, tmdb.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, tmdb.ErrDisabled):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "movie lookup unavailable"})
		default:
			return respondDomainError(c, err)
		}
	}
	return c.JSON(http.StatusOK, res)
}

// CreateMovie inserts a movie with its associations and first sessions
// as one atomic unit (admin only).
func (h *MovieHandler) CreateMovie(c echo.Context) error {
	var req addMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" || req.Duration == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and duration required"})
	}

	sessions := make([]service.AddSessionInput, 0, len(req.Sessions))
	for _, s := range req.Sessions {
		sessions = append(sessions, service.AddSessionInput{
			Date:          s.Date,
			Price:         s.Price,
			PriceVIP:      s.PriceVIP,
			HallID:        s.HallID,
			SessionTypeID: s.SessionTypeID,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	movieID, n, err := h.Svc.CreateMovieWithSessions(ctx, service.MovieInput{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Duration:    req.Duration,
		Year:        req.Year,
		RateID:      req.AgeRateID,
		PosterURL:   req.PosterURL,
		Genres:      req.Genres,
		Actors:      req.Actors,
		Directors:   req.Directors,
		Studios:     req.Studios,
	}, sessions)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie_id": movieID, "sessions": n})
}

// UpdateMovie applies a partial update to a movie (admin only).
func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	id := pathID(c, "movie_id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}

	var req updateMovieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil && req.AgeRateID == nil && req.Description == nil && req.ExpirationDate == nil {
		return respondDomainError(c, schedule.ErrEmptyUpdate)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return respondDomainError(c, err)
	}

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		m.Description = &trimmed
	}
	if req.AgeRateID != nil {
		ok, err := h.Catalog.AgeRateExists(ctx, *req.AgeRateID)
		if err != nil {
			return respondDomainError(c, err)
		}
		if !ok {
			return respondDomainError(c, repository.ErrAgeRateNotFound)
		}
		m.RateID = *req.AgeRateID
	}
	if req.ExpirationDate != nil {
		// A bare date means the end of that local day.
		t, err := h.Clock.NormalizeBound(*req.ExpirationDate, true)
		if err != nil {
			return respondDomainError(c, err)
		}
		m.ExpiresAt = &t
	}

	if err := h.Movies.Update(ctx, m); err != nil && !errors.Is(err, repository.ErrNoChange) {
		return respondDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie updated"})
}
