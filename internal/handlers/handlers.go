package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/views"
	"github.com/anonto42/yatube/validators"
	"github.com/labstack/echo/v4"
)

// LoginPath is where anonymous users are sent to authenticate.
const LoginPath = "/auth/login/"

// actionMethods are accepted by the state-changing routes that are also
// reachable through plain links.
var actionMethods = []string{http.MethodGet, http.MethodPost}

// notFound turns a missing record into a 404 and passes other errors on.
func notFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.ErrNotFound
	}
	return err
}

// paramID parses a numeric path parameter. Anything else is a 404, the
// same as an unknown id.
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrNotFound
	}
	return uint(id), nil
}

// bindForm binds the request into form, trims it, validates it and returns
// the submitted values of fields along with any errors.
func bindForm(c echo.Context, form interface{}, fields ...string) (*views.Form, error) {
	f := views.NewForm()
	for _, field := range fields {
		f.Values[field] = c.FormValue(field)
	}
	if err := c.Bind(form); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed form").SetInternal(err)
	}
	validators.TrimStrings(form)
	f.Errors = validators.Errors(c.Validate(form))
	return f, nil
}

func currentUser(c echo.Context) *models.User {
	return middleware.CurrentUser(c)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func groupURL(slug string) string {
	return "/group/" + slug + "/"
}

// safeNext keeps redirects after login on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusFound, to)
}
