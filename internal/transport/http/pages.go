package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"advisingdash/internal/config"
	"advisingdash/internal/exporter"
	"advisingdash/internal/middleware"
	"advisingdash/internal/stats"
)

const (
	templateDir  = "templates"
	baseTemplate = "_base.gohtml"
)

// Pages holds one parsed template set per page. Each set is the shared base
// layout plus the page's "content" block.
type Pages struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewPages parses every page under templates/ in fsys. Files starting with
// an underscore are partials and are only parsed alongside a page.
func NewPages(fsys fs.FS, logger *slog.Logger) (*Pages, error) {
	files, err := fs.Glob(fsys, path.Join(templateDir, "*.gohtml"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	p := &Pages{
		pages:  make(map[string]*template.Template, len(files)),
		logger: logger.With(slog.String("component", "pages")),
	}
	for _, file := range files {
		base := path.Base(file)
		if strings.HasPrefix(base, "_") {
			continue
		}
		name := strings.TrimSuffix(base, ".gohtml")
		tmpl, err := template.New(name).Funcs(pageFuncs).ParseFS(fsys,
			path.Join(templateDir, baseTemplate), file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", base, err)
		}
		p.pages[name] = tmpl
	}
	if len(p.pages) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templateDir)
	}
	return p, nil
}

// Render executes a page into a buffer so template failures never produce a
// half-written response.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := p.pages[name]
	if !ok {
		p.logger.ErrorContext(r.Context(), "unknown page template", slog.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		p.logger.ErrorContext(r.Context(), "page render failed",
			slog.String("page", name),
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Page is the layout data every page carries.
type Page struct {
	Title     string
	Active    string
	AppName   string
	Version   string
	RequestID string
}

func newPage(r *http.Request, title, active string) Page {
	return Page{
		Title:     title,
		Active:    active,
		AppName:   config.AppName,
		Version:   config.AppVersion,
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

// countsTable feeds the "counts" partial.
type countsTable struct {
	LabelHeader string
	ValueHeader string
	Counts      stats.Counts
	ShowPercent bool
}

// crosstabTable feeds the "crosstab" partial. Highlight marks each column's
// maximum.
type crosstabTable struct {
	Table     *stats.Crosstab
	Highlight bool
}

var pageFuncs = template.FuncMap{
	"percent": func(c stats.Counts, i int) string {
		return exporter.FormatPercent(c.Percent(i))
	},
	"fixed1": func(f float64) string {
		return fmt.Sprintf("%.1f", f)
	},
	"fmtTime": func(t time.Time) string {
		return humanize.Time(t)
	},
	"bytes": func(n int64) string {
		if n <= 0 {
			return "any size"
		}
		return humanize.Bytes(uint64(n))
	},
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
	"selectSize": func(list []string) int {
		return min(max(len(list), 2), 6)
	},
	"counts": func(label, value string, c stats.Counts, pct bool) countsTable {
		return countsTable{LabelHeader: label, ValueHeader: value, Counts: c, ShowPercent: pct}
	},
	"crosstab": func(ct *stats.Crosstab, highlight bool) crosstabTable {
		return crosstabTable{Table: ct, Highlight: highlight}
	},
}

// withQuery appends q to base when it is non-empty.
func withQuery(base string, q url.Values) string {
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}
