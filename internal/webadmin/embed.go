// ABOUTME: Embeds HTML templates and console docs into the binary using go:embed
// ABOUTME: Provides templateFS and docsFS for loading at startup

package webadmin

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed docs/*.md
var docsFS embed.FS
