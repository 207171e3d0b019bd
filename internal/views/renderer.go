// Package views renders the embedded HTML templates.
package views

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/validators"
	"github.com/labstack/echo/v4"
	"github.com/mdobak/go-xerrors"
)

//go:embed templates
var templateFS embed.FS

// Renderer implements echo.Renderer. Every page template is parsed together
// with the base layout and the includes, and executed through "base".
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/includes/*.html")
	if err != nil {
		return nil, xerrors.New(err)
	}

	pages := map[string]*template.Template{}
	err = fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "templates/")
		if d.IsDir() || name == "base.html" || strings.HasPrefix(name, "includes/") {
			return nil
		}

		tpl, err := layout.Clone()
		if err != nil {
			return err
		}
		if _, err := tpl.ParseFS(templateFS, p); err != nil {
			return err
		}
		pages[name] = tpl
		return nil
	})
	if err != nil {
		return nil, xerrors.New(err)
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the page called name. A map of data gets the current
// user, the CSRF token and the request path added under "user", "csrf" and
// "path".
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tpl, ok := r.pages[name]
	if !ok {
		return xerrors.Newf("template %q not found", name)
	}

	if m, ok := data.(echo.Map); ok && c != nil {
		m["user"] = middleware.CurrentUser(c)
		m["csrf"] = c.Get("csrf")
		m["csrf_field"] = config.CSRFFormField
		m["path"] = c.Request().URL.Path
	}
	return tpl.ExecuteTemplate(w, "base", data)
}

// Form carries submitted values and their validation errors back to a
// template.
type Form struct {
	Values map[string]string
	Errors validators.FormErrors
}

func NewForm() *Form {
	return &Form{Values: map[string]string{}, Errors: validators.FormErrors{}}
}

func (f *Form) Value(field string) string {
	return f.Values[field]
}

func (f *Form) Error(field string) string {
	return f.Errors[field]
}

func (f *Form) NonFieldError() string {
	return f.Errors[validators.NonFieldErrors]
}

var funcs = template.FuncMap{
	"truncatewords": truncateWords,
	"linebreaksbr":  linebreaksBR,
	"date": func(t time.Time) string {
		return t.Format("02 Jan 2006")
	},
	"mediaURL": func(name string) string {
		return "/media/" + path.Clean(name)
	},
	"dict": dict,
}

// dict builds a map from alternating keys and values so an include can be
// handed more than one argument.
func dict(kv ...interface{}) (map[string]interface{}, error) {
	if len(kv)%2 != 0 {
		return nil, xerrors.New("dict expects key/value pairs")
	}
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, xerrors.Newf("dict key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

func truncateWords(n int, s string) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + " …"
}

func linebreaksBR(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
