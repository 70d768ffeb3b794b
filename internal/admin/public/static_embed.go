package public

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var static embed.FS

// StaticFS exposes the admin stylesheet and other bundled assets.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}
