package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"advisingdash/internal/dataset"
	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/services"
	"advisingdash/internal/workshop"
)

// WorkshopService is the workshop dashboard as seen by the handlers.
type WorkshopService interface {
	Uploader
	List() []services.Dataset
	View(ctx context.Context, id string, preview bool) (*services.WorkshopView, error)
	Chart(ctx context.Context, id, name string) (*services.Chart, error)
	ChartExtension() string
	Workbook(ctx context.Context, id string, w io.Writer) error
	TableCSV(ctx context.Context, id, table string, w io.Writer) error
}

// WorkshopHandler serves the workshop dashboard.
type WorkshopHandler struct {
	responder
	service        WorkshopService
	maxUploadBytes int64
}

// NewWorkshopHandler creates the workshop handler.
func NewWorkshopHandler(service WorkshopService, pages *Pages, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64, logger *slog.Logger) *WorkshopHandler {
	logger = logger.With(slog.String("handler", "workshop"))
	return &WorkshopHandler{
		responder:      responder{pages: pages, errors: errorHandler, logger: logger},
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the browser routes, mounted at /workshop.
func (h *WorkshopHandler) Routes() chi.Router {
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

// APIRoutes returns the JSON routes, mounted at /api/workshop.
func (h *WorkshopHandler) APIRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/upload", h.Upload)
	r.Get("/{id}/report", h.Report)
	return r
}

// Index handles GET /workshop
func (h *WorkshopHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "workshop_index", indexPage{
		Page:            newPage(r, "Workshop Analysis", "workshop"),
		Kind:            services.KindWorkshop,
		MaxUploadBytes:  h.maxUploadBytes,
		RequiredColumns: workshop.RequiredColumns,
		List:            datasetList{Kind: services.KindWorkshop, Datasets: h.service.List()},
	})
}

// Upload handles POST /workshop/upload
func (h *WorkshopHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, services.KindWorkshop, h.service, h.maxUploadBytes)
}

type workshopPage struct {
	Page
	Dataset     services.Dataset
	Report      *workshop.Report
	ShowPreview bool
	Preview     *dataset.Table
	Duplicate   bool

	ext string
}

func (p workshopPage) ChartURL(name string) string {
	return fmt.Sprintf("/workshop/%s/charts/%s.%s", p.Dataset.ID, name, p.ext)
}

func (p workshopPage) TableURL(name string) string {
	return fmt.Sprintf("/workshop/%s/tables/%s.csv", p.Dataset.ID, name)
}

func (p workshopPage) ExportURL() string {
	return fmt.Sprintf("/workshop/%s/export.xlsx", p.Dataset.ID)
}

// Dashboard handles GET /workshop/{id}
func (h *WorkshopHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preview := q.Get("preview") == "1"

	view, err := h.service.View(r.Context(), chi.URLParam(r, "id"), preview)
	if err != nil {
		h.fail(w, r, mapError(err, services.KindWorkshop, ""), "/workshop")
		return
	}

	h.pages.Render(w, r, http.StatusOK, "workshop", workshopPage{
		Page:        newPage(r, view.Dataset.Filename, "workshop"),
		Dataset:     view.Dataset,
		Report:      view.Report,
		ShowPreview: preview,
		Preview:     view.Report.Preview,
		Duplicate:   q.Get("duplicate") == "1",
		ext:         h.service.ChartExtension(),
	})
}

// Report handles GET /api/workshop/{id}/report
func (h *WorkshopHandler) Report(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		h.errors.HandleError(w, r, mapError(err, services.KindWorkshop, ""))
		return
	}
	render.JSON(w, r, view)
}

// Chart handles GET /workshop/{id}/charts/{chart}
func (h *WorkshopHandler) Chart(w http.ResponseWriter, r *http.Request) {
	name := trimExt(chi.URLParam(r, "chart"))
	chart, err := h.service.Chart(r.Context(), chi.URLParam(r, "id"), name)
	if err != nil {
		h.errors.HandleError(w, r, mapError(err, services.KindWorkshop, name))
		return
	}
	writeChart(w, chart)
}

// Table handles GET /workshop/{id}/tables/{table}
func (h *WorkshopHandler) Table(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := trimExt(chi.URLParam(r, "table"))

	h.download(w, r, contentTypeCSV, "workshop-"+name+".csv", "/workshop/"+id, func(out io.Writer) error {
		return mapError(h.service.TableCSV(r.Context(), id, name, out), services.KindWorkshop, name)
	})
}

// Export handles GET /workshop/{id}/export.xlsx
func (h *WorkshopHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.download(w, r, contentTypeXLSX, "workshop-report.xlsx", "/workshop/"+id, func(out io.Writer) error {
		return mapError(h.service.Workbook(r.Context(), id, out), services.KindWorkshop, "")
	})
}
