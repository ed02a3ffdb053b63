// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the slog setup and a handler that enriches
// warnings and errors with request context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const requestPathKey contextKey = "request_path"

// WithRequestPath stores the request path for later log records.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathKey, path)
}

// RequestPath returns the path stored by WithRequestPath.
func RequestPath(ctx context.Context) string {
	path, _ := ctx.Value(requestPathKey).(string)
	return path
}

// ContextHandler is a slog.Handler that wraps another handler and adds the
// request path and id to records at or above its level.
type ContextHandler struct {
	inner slog.Handler
	level slog.Level
}

// NewContextHandler wraps inner. Records at WARN and above are enriched.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && ctx != nil {
		if path := RequestPath(ctx); path != "" {
			r.AddAttrs(slog.String("path", path))
		}
		if id := chimw.GetReqID(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), level: h.level}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), level: h.level}
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values
// give info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the application logger: a text handler writing to w at level,
// wrapped in a ContextHandler.
func New(w io.Writer, level string) *slog.Logger {
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(NewContextHandler(inner))
}
