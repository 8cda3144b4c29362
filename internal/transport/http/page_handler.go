package http

import (
	"log/slog"
	"net/http"

	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/services"
)

// DatasetLister lists resident datasets; an empty kind lists all of them.
type DatasetLister interface {
	List(kind services.Kind) []services.Dataset
}

// datasetList feeds the "datasets" partial.
type datasetList struct {
	Kind     services.Kind
	Datasets []services.Dataset
}

type homePage struct {
	Page
	List datasetList
}

// PageHandler serves the static pages.
type PageHandler struct {
	responder
	datasets DatasetLister
}

// NewPageHandler creates the page handler.
func NewPageHandler(pages *Pages, datasets DatasetLister, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *PageHandler {
	logger = logger.With(slog.String("handler", "pages"))
	return &PageHandler{
		responder: responder{pages: pages, errors: errorHandler, logger: logger},
		datasets:  datasets,
	}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "home", homePage{
		Page: newPage(r, "Home", "home"),
		List: datasetList{Datasets: h.datasets.List("")},
	})
}

// Guide handles GET /guide
func (h *PageHandler) Guide(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, "guide", newPage(r, "User Guide", "guide"))
}

// NotFound serves unknown routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if !wantsHTML(r) {
		h.errors.NotFound(w, r)
		return
	}
	h.fail(w, r, apierrors.NotFoundError("page"), "/")
}
