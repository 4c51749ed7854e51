// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web provides embedded web assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// TemplatesFS returns the embedded templates filesystem rooted at templates/.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(templatesFS, "templates")
}

// StaticFS returns the embedded static assets filesystem rooted at static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
