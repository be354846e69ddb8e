package static

import (
	"embed"
	"io/fs"
)

//go:embed all:out
var staticFS embed.FS

// StaticFS serves the embedded out directory
var StaticFS, _ = fs.Sub(staticFS, "out")
