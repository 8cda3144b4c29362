// Package http implements the dashboard's HTTP handlers.
//
// Handlers stay thin: they parse the request, call a service and format the
// result. Browser routes render html/template pages from the embedded web
// filesystem; API routes answer JSON. Every failure is reported as RFC 7807
// problem details, or as the error page when the client asked for HTML.
//
// Routes:
//
//	GET  /                              home page
//	GET  /guide                         user guide
//	GET  /advising, /workshop           upload form and loaded datasets
//	POST /{kind}/upload                 multipart upload (field "file")
//	GET  /{kind}/{id}                   dashboard page
//	GET  /{kind}/{id}/charts/{chart}    rendered chart image
//	GET  /{kind}/{id}/tables/{table}    CSV table
//	GET  /{kind}/{id}/export.xlsx       Excel report
//	GET  /api/{kind}/{id}/report        analysis as JSON
//	GET  /api/datasets                  resident datasets
//	DELETE /api/datasets/{id}           drop a dataset
package http
