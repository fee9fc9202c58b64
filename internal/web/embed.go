package web

import "embed"

//go:embed templates/*.html static/*.css
var contentFS embed.FS
