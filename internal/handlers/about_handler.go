package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func RegisterAboutRoutes(g *echo.Group) {
	g.GET("/about/author/", StaticPage("about/author.html"))
	g.GET("/about/tech/", StaticPage("about/tech.html"))
}

// StaticPage renders a template that needs no data.
func StaticPage(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, name, echo.Map{})
	}
}
