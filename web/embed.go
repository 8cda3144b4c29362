// Package web holds the dashboard's HTML templates and static assets.
package web

import "embed"

// FS contains templates/*.gohtml and static/.
//
//go:embed templates/*.gohtml static
var FS embed.FS
