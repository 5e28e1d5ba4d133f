// Package api serves a read-only view of project state over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dhruv-ramu/FragmentFusion/internal/buildinfo"
	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Deps are the use cases the API reads from. Metrics may be nil.
type Deps struct {
	Samples        ports.SampleScanner
	SamplesRequest domain.SamplesRequest
	Downloads      ports.DownloadStatus
	Metrics        http.Handler
	Logger         *slog.Logger
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)
	e.Use(requestLog(log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Get().Version})
	})
	e.GET("/api/samples", samplesHandler(d.Samples, d.SamplesRequest))
	e.GET("/api/downloads", downloadsHandler(d.Downloads))
	e.GET("/api/summaries", summariesHandler(d.Downloads))
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
	return e
}

func samplesHandler(s ports.SampleScanner, req domain.SamplesRequest) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := s.Scan(req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, list)
	}
}

func downloadsHandler(d ports.DownloadStatus) echo.HandlerFunc {
	return func(c echo.Context) error {
		var source domain.Source
		if q := c.QueryParam("source"); q != "" {
			s, ok := domain.ParseSource(q)
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "source must be ena or ncbi")
			}
			source = s
		}
		entries, err := d.Status(c.Request().Context(), source)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, entries)
	}
}

func summariesHandler(d ports.DownloadStatus) echo.HandlerFunc {
	return func(c echo.Context) error {
		sums, err := d.Summaries()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, sums)
	}
}

// errorHandler renders domain errors as JSON with a status derived from their kind.
func errorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errorBody{Error: err.Error()}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			}
		} else if kind, ok := domain.KindOf(err); ok {
			body.Kind = string(kind)
			status = statusFor(kind)
		}

		if status >= http.StatusInternalServerError {
			log.Error("api.error", "path", c.Path(), "error", err)
		}
		if jerr := c.JSON(status, body); jerr != nil {
			log.Error("api.write_error", "error", jerr)
		}
	}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput, domain.KindInvalidConfig, domain.KindMissingVar:
		return http.StatusBadRequest
	case domain.KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			log.Info("api.request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(begin).Milliseconds(),
			)
			return nil
		}
	}
}

// Serve runs e on addr until ctx ends, then shuts it down within grace.
func Serve(ctx context.Context, e *echo.Echo, addr string, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		_ = e.Close()
		return err
	}
	return nil
}
