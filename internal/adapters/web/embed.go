// Package web serves the JSON API and a minimal report page over HTTP.
// Binds to localhost only: no network exposure, no auth needed.
package web

import "embed"

//go:embed static/index.html
var staticFS embed.FS
