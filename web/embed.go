package web

import "embed"

// Templates holds the page templates for both binaries, under
// templates/multi and templates/single.
//
//go:embed templates/multi/*.html templates/single/*.html
var Templates embed.FS
