// Package handler implements the HTTP layer: request parsing, actor
// identity, transaction orchestration and mapping of domain errors onto
// status codes.  Business rules live in state, availability, ledger and
// checkout; handlers wire them to the repositories.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// dbTimeout bounds every request-scoped database interaction.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// actorID extracts the authenticated staff ID placed in the context by
// the JWT middleware.  The sub claim decodes as float64 from JSON but
// may arrive as a string depending on the issuer.
func actorID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	case uint64:
		if v > 0 {
			return v, nil
		}
	}
	return 0, errors.New("missing actor identity")
}

// parseID reads a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

// parseDate parses a calendar date in YYYY-MM-DD form as UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// parseClockOn parses an HH:MM wall-clock string onto the given date.
// An empty string yields nil: same-day stays without expected times are
// handled conservatively by the overlap checker.
func parseClockOn(date time.Time, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return nil, err
	}
	at := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return &at, nil
}

// fail maps domain errors onto HTTP responses.  Conflict reasons and
// transition errors are safe to show the caller verbatim; anything else
// is reported as a generic persistence failure.
func fail(c echo.Context, err error) error {
	var te *state.TransitionError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case repository.IsConflict(err):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &te):
		return c.JSON(http.StatusConflict, echo.Map{"error": te.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// badRequest is the uniform 400 response.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
