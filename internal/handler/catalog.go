package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-back-office/internal/repository"
)

// CatalogHandler serves the public reference listings: genres, halls
// and age rates.
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
	Halls   *repository.HallRepo
}

func NewCatalogHandler(catalog *repository.CatalogRepo, halls *repository.HallRepo) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Halls: halls}
}

type namedResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type hallResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	SeatRows uint32 `json:"seat_rows"`
	SeatCols uint32 `json:"seat_cols"`
}

// GetGenres lists all genres.
func (h *CatalogHandler) GetGenres(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Catalog.Genres(ctx)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]namedResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, namedResp{ID: g.ID, Name: g.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// GetAgeRates lists all age rates.
func (h *CatalogHandler) GetAgeRates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rates, err := h.Catalog.AgeRates(ctx)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]namedResp, 0, len(rates))
	for _, r := range rates {
		out = append(out, namedResp{ID: r.ID, Name: r.Name})
	}
	return c.JSON(http.StatusOK, out)
}

// GetHalls lists all halls with their grid dimensions.
func (h *CatalogHandler) GetHalls(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	halls, err := h.Halls.List(ctx)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]hallResp, 0, len(halls))
	for _, hall := range halls {
		out = append(out, hallResp{ID: hall.ID, Name: hall.Name, SeatRows: hall.SeatRows, SeatCols: hall.SeatCols})
	}
	return c.JSON(http.StatusOK, out)
}
