package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel matching for domain failures
	"log"     // unexpected failures are logged, never echoed to clients
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"net/http"

	"github.com/iliyamo/cinema-back-office/internal/repository"
	"github.com/iliyamo/cinema-back-office/internal/schedule"
	"github.com/iliyamo/cinema-back-office/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter; zero means invalid.
func pathID(c echo.Context, name string) uint64 {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// respondDomainError translates domain failures into HTTP responses.
// Input-shape problems map to 400, dangling references to 404,
// invariant violations to 409. Anything unrecognized is a 500 whose
// detail goes to the log only.
func respondDomainError(c echo.Context, err error) error {
	var (
		conflict  *schedule.ConflictError
		seatTaken *schedule.SeatTakenError
		seatRange *schedule.SeatRangeError
	)
	switch {
	case errors.Is(err, schedule.ErrMalformedDate),
		errors.Is(err, schedule.ErrNoSessions),
		errors.Is(err, schedule.ErrEmptyUpdate),
		errors.Is(err, service.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &seatRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": seatRange.Error()})
	case errors.Is(err, repository.ErrMovieNotFound),
		errors.Is(err, repository.ErrHallNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrSessionTypeNotFound),
		errors.Is(err, repository.ErrAgeRateNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrDuplicateDate):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          conflict.Error(),
			"hall_id":        conflict.HallID,
			"proposed_at":    conflict.ProposedLocal,
			"conflicts_with": conflict.ConflictLocal,
		})
	case errors.As(err, &seatTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": seatTaken.Error()})
	default:
		log.Printf("handler: unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
