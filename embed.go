package spacetraveling

import (
	"embed"
	"io/fs"
)

// EmbeddedAssets contains the default static assets: styles.css, logo.svg,
// favicon.svg and robots.txt. Files of the same name in the static dir win.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// embeddedFS returns EmbeddedAssets rooted at the asset directory.
func embeddedFS() fs.FS {
	sub, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		panic(err)
	}
	return sub
}
