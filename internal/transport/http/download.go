package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"advisingdash/internal/services"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// writeChart sends a rendered chart. Charts depend on the filter in the URL
// so they are only cached privately.
func writeChart(w http.ResponseWriter, chart *services.Chart) {
	w.Header().Set("Content-Type", chart.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(chart.Data)))
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write(chart.Data)
}

// download buffers write so a failure can still be reported as an error
// response, then sends the result as an attachment.
func (rs responder) download(w http.ResponseWriter, r *http.Request, contentType, filename, back string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		rs.fail(w, r, err, back)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// trimExt drops a trailing ".ext" from a URL segment.
func trimExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
