package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/ghaggin/yoga/internal/model"
	"github.com/ghaggin/yoga/internal/view"
)

//go:embed tmpl/*.html
var files embed.FS

const (
	templateDir string = "tmpl"
	longDate    string = "January 2, 2006"
)

// Data is handed to every page. Page holds the view model of the page.
type Data struct {
	PageTitle string
	Links     []view.Link
	LoggedIn  bool
	Flash     string
	Error     string
	Page      any
}

var funcs = template.FuncMap{
	"longDate": func(t model.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(longDate)
	},
	"upper": strings.ToUpper,
	"selected": func(a, b int64) bool {
		return a == b
	},
}

var pages = map[string]*template.Template{}

func init() {
	entries, err := files.ReadDir(templateDir)
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		if e.Name() == "base.html" {
			continue
		}
		pages[e.Name()] = template.Must(template.New(e.Name()).Funcs(funcs).ParseFS(files,
			templateDir+"/"+e.Name(),
			templateDir+"/base.html",
		))
	}
}

func Render(w http.ResponseWriter, r *http.Request, tmpl string, td any) error {
	return RenderStatus(w, r, http.StatusOK, tmpl, td)
}

// RenderStatus buffers the page and writes it with status.
func RenderStatus(w http.ResponseWriter, _ *http.Request, status int, tmpl string, td any) error {
	t, ok := pages[tmpl]
	if !ok {
		return fmt.Errorf("unknown template %q", tmpl)
	}

	buf := &bytes.Buffer{}

	err := t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
