package views

import "embed"

//go:embed templates/*.html templates/blog/*.html templates/registration/*.html templates/pages/*.html templates/includes/*.html
var templateFS embed.FS
