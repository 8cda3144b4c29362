package http

import (
	"errors"
	"net/http"
	"strings"

	apierrors "advisingdash/internal/errors"
	"advisingdash/internal/services"
)

// mapError converts service sentinels into API errors. name is the chart or
// table the request asked for, if any.
func mapError(err error, kind services.Kind, name string) error {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound), errors.Is(err, services.ErrWrongKind):
		return apierrors.ErrDatasetNotFound
	case errors.Is(err, services.ErrUnknownChart):
		return apierrors.UnknownChartError(string(kind), name)
	case errors.Is(err, services.ErrUnknownTable):
		return apierrors.UnknownTableError(string(kind), name)
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.ErrMissingFile
	case errors.Is(err, services.ErrUploadTooLarge):
		return apierrors.ErrPayloadTooLarge
	case errors.Is(err, services.ErrUnknownKind):
		return apierrors.NotFoundError("dashboard")
	}
	return err
}

// wantsHTML reports whether the client is a browser expecting a page.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
