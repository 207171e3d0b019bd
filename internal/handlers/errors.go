package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdobak/go-xerrors"
)

// NewHTTPErrorHandler renders the error pages. Server errors are logged
// with their stack trace.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}
		// A missing CSRF token is reported as a bad request.
		if code == http.StatusBadRequest && strings.Contains(message, "csrf") {
			code = http.StatusForbidden
		}

		var page string
		switch {
		case code == http.StatusNotFound:
			page = "core/404.html"
		case code == http.StatusForbidden:
			page = "core/403csrf.html"
		case code >= http.StatusInternalServerError:
			page = "core/500.html"
			logger.ErrorContext(c.Request().Context(), "Unhandled error",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().RequestURI),
				slog.String("err", err.Error()),
				slog.String("stack", xerrors.Sprint(err)),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else if page != "" {
			err = c.Render(code, page, echo.Map{})
		} else {
			err = c.String(code, message)
		}
		if err != nil {
			logger.Error("Failed to write error response", slog.String("err", err.Error()))
		}
	}
}
