// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content renders article bodies for preview and derives excerpts.
// Bodies are written in Markdown and may contain inline HTML.
package content

import (
	"bytes"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	// ugc allows the tags a content editor needs and nothing executable.
	ugc = bluemonday.UGCPolicy()

	strict = bluemonday.StrictPolicy()
)

// Preview renders body to sanitized HTML. Raw HTML in the body passes the
// renderer and is then filtered by the sanitizer.
func Preview(body string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(body)) //nolint:gosec // escaped above
	}
	return template.HTML(ugc.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}

// PlainText strips all markup from body.
func PlainText(body string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		buf.Reset()
		buf.WriteString(body)
	}
	text := html.UnescapeString(strict.Sanitize(buf.String()))
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns at most limit runes of the plain text of body, cut at a
// word boundary and marked with an ellipsis when shortened.
func Excerpt(body string, limit int) string {
	text := PlainText(body)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
