package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "advisingdash/internal/errors"
)

// responder reports failures as problem JSON, or as the error page for
// browsers.
type responder struct {
	pages  *Pages
	errors *apierrors.ErrorHandler
	logger *slog.Logger
}

// errorPage is the data for the error template.
type errorPage struct {
	Page
	Problem *apierrors.ProblemDetails
	Back    string
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if rs.pages == nil || !wantsHTML(r) {
		rs.errors.HandleError(w, r, err)
		return
	}

	problem := rs.errors.ErrorToProblem(err, r)
	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	rs.logger.Log(r.Context(), level, "page request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path))

	rs.pages.Render(w, r, problem.Status, "error", errorPage{
		Page:    newPage(r, problem.Title, ""),
		Problem: problem,
		Back:    back,
	})
}
