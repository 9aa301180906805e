// Package bundle embeds the demo asset tree used when no asset source is
// configured.
package bundle

import (
	"embed"
	"io/fs"
)

//go:embed demo
var demo embed.FS

// FS returns the demo asset tree rooted at its top directory.
func FS() fs.FS {
	sub, err := fs.Sub(demo, "demo")
	if err != nil {
		// The embed pattern above guarantees the directory exists.
		panic(err)
	}
	return sub
}
