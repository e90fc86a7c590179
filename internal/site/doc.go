// Package site turns a source tree into a rendered site.
//
// Process walks the source root in two phases. Phase one collects layouts,
// reads every page, parses its front matter and resolves its output path so
// that collisions are detected before anything is written. Phase two renders
// pages (body template, Markdown conversion, layout chain) and copies static
// assets, optionally on several workers.
//
// Reserved names:
//
//	_site     output directory, never walked
//	_layouts  layout templates (only at the source root), never copied
//	---       front-matter delimiter
package site
