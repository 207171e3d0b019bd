package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareObservesRoutePattern(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/posts/:post_id/", func(c echo.Context) error {
		if c.Param("post_id") == "404" {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.NoContent(http.StatusOK)
	})

	before := testutil.CollectAndCount(RequestDuration)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/1/", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/2/", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/404/", nil))

	// Two label sets: one per status, never one per post id.
	assert.Equal(t, before+2, testutil.CollectAndCount(RequestDuration))
}

func TestHandlerServesMetrics(t *testing.T) {
	SignupSuccess.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signup_success_total")
}
