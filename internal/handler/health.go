package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health returns a plain "ok" for load balancer probes.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// APIHealth reports service health including database reachability, for
// monitoring systems that want more than a liveness probe.
func APIHealth(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "ok"
		dbStatus := "ok"
		code := http.StatusOK
		if err := db.PingContext(c.Request().Context()); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, echo.Map{
			"status":   status,
			"database": dbStatus,
		})
	}
}
