package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"advisingdash/internal/advising"
	"advisingdash/internal/dataset"
	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/services"
)

// AdvisingService is the advising dashboard as seen by the handlers.
type AdvisingService interface {
	Uploader
	List() []services.Dataset
	View(ctx context.Context, id string, filter advising.Filter, preview bool) (*services.AdvisingView, error)
	Chart(ctx context.Context, id string, filter advising.Filter, name string) (*services.Chart, error)
	ChartExtension() string
	Workbook(ctx context.Context, id string, filter advising.Filter, w io.Writer) error
	TableCSV(ctx context.Context, id string, filter advising.Filter, table string, w io.Writer) error
}

// AdvisingHandler serves the advising dashboard.
type AdvisingHandler struct {
	responder
	service        AdvisingService
	maxUploadBytes int64
}

// NewAdvisingHandler creates the advising handler.
func NewAdvisingHandler(service AdvisingService, pages *Pages, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *AdvisingHandler {
	logger = logger.With(slog.String("handler", "advising"))
	return &AdvisingHandler{
		responder:      responder{pages: pages, errors: errorHandler, logger: logger},
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the browser routes, mounted at /advising.
func (h *AdvisingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/upload", h.Upload)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Dashboard)
		r.Get("/charts/{chart}", h.Chart)
		r.Get("/tables/{table}", h.Table)
		r.Get("/export.xlsx", h.Export)
	})
	return r
}

// APIRoutes returns the JSON routes, mounted at /api/advising.
func (h *AdvisingHandler) APIRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/upload", h.Upload)
	r.Get("/{id}/report", h.Report)
	return r
}

type indexPage struct {
	Page
	Kind            services.Kind
	MaxUploadBytes  int64
	RequiredColumns []string
	List            datasetList
}

// Index handles GET /advising
func (h *AdvisingHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "advising_index", indexPage{
		Page:            newPage(r, "Advising Analysis", "advising"),
		Kind:            services.KindAdvising,
		MaxUploadBytes:  h.maxUploadBytes,
		RequiredColumns: advising.RequiredColumns,
		List:            datasetList{Kind: services.KindAdvising, Datasets: h.service.List()},
	})
}

// Upload handles POST /advising/upload
func (h *AdvisingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, services.KindAdvising, h.service, h.maxUploadBytes)
}

type advisingPage struct {
	Page
	Dataset     services.Dataset
	Report      *advising.Report
	Options     advising.FilterOptions
	Selected    advising.Filter
	ShowPreview bool
	Preview     *dataset.Table
	Duplicate   bool

	ext   string
	query url.Values
}

func (p advisingPage) ChartURL(name string) string {
	return withQuery(fmt.Sprintf("/advising/%s/charts/%s.%s", p.Dataset.ID, name, p.ext), p.query)
}

func (p advisingPage) TableURL(name string) string {
	return withQuery(fmt.Sprintf("/advising/%s/tables/%s.csv", p.Dataset.ID, name), p.query)
}

func (p advisingPage) ExportURL() string {
	return withQuery(fmt.Sprintf("/advising/%s/export.xlsx", p.Dataset.ID), p.query)
}

// Dashboard handles GET /advising/{id}
func (h *AdvisingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	filter := parseFilter(q)
	preview := q.Get("preview") == "1"

	view, err := h.service.View(r.Context(), id, filter, preview)
	if err != nil {
		h.fail(w, r, mapError(err, services.KindAdvising, ""), "/advising")
		return
	}

	h.pages.Render(w, r, http.StatusOK, "advising", advisingPage{
		Page:        newPage(r, view.Dataset.Filename, "advising"),
		Dataset:     view.Dataset,
		Report:      view.Report,
		Options:     view.Report.Options,
		Selected:    view.Report.Filter,
		ShowPreview: preview,
		Preview:     view.Report.Preview,
		Duplicate:   q.Get("duplicate") == "1",
		ext:         h.service.ChartExtension(),
		query:       filterQuery(filter),
	})
}

// Report handles GET /api/advising/{id}/report
func (h *AdvisingHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.service.View(r.Context(), chi.URLParam(r, "id"), parseFilter(q), false)
	if err != nil {
		h.errors.HandleError(w, r, mapError(err, services.KindAdvising, ""))
		return
	}
	render.JSON(w, r, view)
}

// Chart handles GET /advising/{id}/charts/{chart}
func (h *AdvisingHandler) Chart(w http.ResponseWriter, r *http.Request) {
	name := trimExt(chi.URLParam(r, "chart"))
	chart, err := h.service.Chart(r.Context(), chi.URLParam(r, "id"), parseFilter(r.URL.Query()), name)
	if err != nil {
		h.errors.HandleError(w, r, mapError(err, services.KindAdvising, name))
		return
	}
	writeChart(w, chart)
}

// Table handles GET /advising/{id}/tables/{table}
func (h *AdvisingHandler) Table(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := trimExt(chi.URLParam(r, "table"))
	filter := parseFilter(r.URL.Query())

	h.download(w, r, contentTypeCSV, "advising-"+name+".csv", "/advising/"+id, func(out io.Writer) error {
		return mapError(h.service.TableCSV(r.Context(), id, filter, name, out), services.KindAdvising, name)
	})
}

// Export handles GET /advising/{id}/export.xlsx
func (h *AdvisingHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filter := parseFilter(r.URL.Query())

	h.download(w, r, contentTypeXLSX, "advising-report.xlsx", "/advising/"+id, func(out io.Writer) error {
		return mapError(h.service.Workbook(r.Context(), id, filter, out), services.KindAdvising, "")
	})
}

// parseFilter reads repeated advisor and type parameters. Blank values are
// ignored.
func parseFilter(q url.Values) advising.Filter {
	return advising.Filter{
		Advisors: nonBlank(q["advisor"]),
		Types:    nonBlank(q["type"]),
	}
}

func filterQuery(f advising.Filter) url.Values {
	q := url.Values{}
	for _, a := range f.Advisors {
		q.Add("advisor", a)
	}
	for _, t := range f.Types {
		q.Add("type", t)
	}
	return q
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
