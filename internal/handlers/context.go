package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/middleware"
	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user or a 401.
func getUserIDFromContext(c echo.Context) (uint, error) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// parseIDParam reads a numeric path parameter. A malformed id cannot match any record.
func parseIDParam(c echo.Context, name, notFoundMessage string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, notFoundMessage)
	}
	return uint(id), nil
}

// handleServiceError maps service errors onto HTTP errors. Anything unclassified is logged with the
// request logger and hidden behind a generic message.
func handleServiceError(c echo.Context, err error) error {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		switch {
		case errors.Is(domainErr.Kind, services.ErrInvalidRequest), errors.Is(domainErr.Kind, services.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, domainErr.Message)
		case errors.Is(domainErr.Kind, services.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, domainErr.Message)
		case errors.Is(domainErr.Kind, services.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, domainErr.Message)
		}
	}

	logging.FromContext(c.Request().Context()).Error("request failed",
		"error", err,
		"route", c.Path(),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
}
