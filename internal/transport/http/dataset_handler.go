package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/services"
)

// DatasetStore is the dataset registry as seen by the API.
type DatasetStore interface {
	DatasetLister
	Delete(ctx context.Context, id string) error
}

// DatasetHandler exposes the dataset registry.
type DatasetHandler struct {
	store        DatasetStore
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDatasetHandler creates the dataset handler.
func NewDatasetHandler(store DatasetStore, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{
		store:        store,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "datasets")),
	}
}

// Routes returns the dataset routes, mounted at /api/datasets.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.List)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /api/datasets?kind=
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	var kind services.Kind
	if k := r.URL.Query().Get("kind"); k != "" {
		parsed, err := services.ParseKind(k)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", "must be advising or workshop"))
			return
		}
		kind = parsed
	}

	render.JSON(w, r, map[string]interface{}{
		"datasets": h.store.List(kind),
	})
}

// Delete handles DELETE /api/datasets/{id}
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, mapError(err, "", ""))
		return
	}
	h.logger.InfoContext(r.Context(), "dataset deleted", slog.String("dataset_id", id))
	w.WriteHeader(http.StatusNoContent)
}
