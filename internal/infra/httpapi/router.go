package httpapi

import (
	"context"
	"net/http"
	"time"

	"showtime_alert_bot/internal/app"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var ErrServerClosed = http.ErrServerClosed

const healthPingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RunReporter exposes the last completed showtime check.
type RunReporter interface {
	LastRun() *app.RunSummary
}

func NewRouter(db Pinger, runs RunReporter, logger *logrus.Entry) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.WithError(err).Warn("Health check failed: database unreachable")
			return c.String(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.String(http.StatusOK, "ok")
	})

	server.GET("/status", func(c echo.Context) error {
		summary := runs.LastRun()
		if summary == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, summary)
	})

	return server
}
