package middleware

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/labstack/echo/v4"
)

// captureWriter tees the response body into buf while passing it through.
type captureWriter struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// CachePage serves GET requests from pc and stores successful responses in
// it. Pages vary on the logged in user, so SessionAuth must run first.
func CachePage(pc *cache.PageCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			key := cacheKey(c)
			if page, ok := pc.Get(key); ok {
				header := c.Response().Header()
				for k, v := range page.Header {
					header[k] = v
				}
				c.Response().WriteHeader(page.Status)
				_, err := c.Response().Write(page.Body)
				return err
			}

			res := c.Response()
			cw := &captureWriter{ResponseWriter: res.Writer}
			res.Writer = cw
			defer func() { res.Writer = cw.ResponseWriter }()

			if err := next(c); err != nil {
				return err
			}

			if res.Status == http.StatusOK {
				header := res.Header().Clone()
				header.Del(echo.HeaderSetCookie)
				pc.Set(key, cache.Page{
					Status: res.Status,
					Header: header,
					Body:   bytes.Clone(cw.buf.Bytes()),
				})
			}
			return nil
		}
	}
}

func cacheKey(c echo.Context) string {
	var viewer uint
	if user := CurrentUser(c); user != nil {
		viewer = user.ID
	}
	return fmt.Sprintf("%s %s user=%d", c.Request().Method, c.Request().URL.RequestURI(), viewer)
}
