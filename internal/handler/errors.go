// Package handler implements the HTTP endpoints: request binding, identity
// extraction and translation of service errors into status codes. Business
// rules live in the service layer; handlers stay thin.
package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fittedco/wardrobe-service/internal/middleware"
	"github.com/fittedco/wardrobe-service/internal/service"
)

// writeServiceErr maps the service error taxonomy onto HTTP responses. The
// message carried by domain errors is safe for clients; internal failures
// are logged and replaced with a generic body.
func writeServiceErr(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message})
	}
	var ae *service.AuthError
	if errors.As(err, &ae) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": ae.Message})
	}
	var nfe *service.NotFoundError
	if errors.As(err, &nfe) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": nfe.Message})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// currentUserID reads the authenticated user id injected by the JWT
// middleware. Routes outside the auth group have no identity; treat that as
// an unauthorized call rather than a panic.
func currentUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(middleware.CtxUserID).(uuid.UUID)
	return id, ok
}
