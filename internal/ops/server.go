// Package ops serves liveness, readiness and prometheus metrics over HTTP.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	readyTimeout    = 3 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Check is one readiness dependency.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	addr   string
	checks []Check
}

func NewServer(addr string, checks ...Check) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		addr:   addr,
		checks: checks,
	}
	e.GET("/healthz", s.handleLiveness)
	e.GET("/readyz", s.handleReadiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Serve listens until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("ops server listening on %s", s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("ops server stopped")
	return nil
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	for _, check := range s.checks {
		if err := check.Fn(ctx); err != nil {
			logrus.WithField("check", check.Name).Warnf("ops.Server, readiness check error: %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":       "unavailable",
				"failed_check": check.Name,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
