// Package web embeds the page template and its stylesheet.
package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets.
//
//go:embed static/*
var StaticFS embed.FS
