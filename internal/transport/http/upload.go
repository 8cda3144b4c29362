package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/services"
)

const (
	// multipartOverhead is allowed on top of the file limit for form
	// boundaries and headers.
	multipartOverhead = 1 << 20
	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 8 << 20
	uploadField     = "file"
)

// Uploader stores an uploaded export.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*services.UploadResult, error)
}

// handleUpload reads the "file" form field and hands it to svc. Browsers are
// redirected to the new dashboard; JSON clients get the stored dataset.
func (rs responder) handleUpload(w http.ResponseWriter, r *http.Request, kind services.Kind, svc Uploader, maxBytes int64) {
	back := "/" + string(kind)
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rs.fail(w, r, apierrors.ErrPayloadTooLarge, back)
			return
		}
		rs.fail(w, r, apierrors.InvalidRequestWithError(err), back)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			rs.fail(w, r, apierrors.ErrMissingFile, back)
			return
		}
		rs.fail(w, r, apierrors.InvalidRequestWithError(err), back)
		return
	}
	defer file.Close()

	res, err := svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		rs.fail(w, r, mapError(err, kind, ""), back)
		return
	}

	rs.logger.InfoContext(r.Context(), "upload accepted",
		slog.String("kind", string(kind)),
		slog.String("dataset_id", res.Dataset.ID),
		slog.Bool("duplicate", res.Duplicate))

	if wantsJSON(r) {
		status := http.StatusCreated
		if res.Duplicate {
			status = http.StatusOK
		}
		w.Header().Set("Location", back+"/"+res.Dataset.ID)
		render.Status(r, status)
		render.JSON(w, r, res)
		return
	}

	target := back + "/" + res.Dataset.ID
	if res.Duplicate {
		target += "?duplicate=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
