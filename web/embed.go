// Package web holds the single page UI served at the site root.
package web

import "embed"

//go:embed index.html
var Assets embed.FS
