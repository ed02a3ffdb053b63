// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/session"
)

// ContextKeyLanguage holds the admin UI language code.
const ContextKeyLanguage ContextKey = "language"

// Language resolves the UI language of the request:
//  1. the language stored in the session,
//  2. the Accept-Language header,
//  3. the default language.
func Language(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := resolveLanguage(r, sm)
			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(r *http.Request, sm *scs.SessionManager) string {
	if sm != nil {
		if lang := session.Language(r.Context(), sm); lang != "" && i18n.IsSupported(lang) {
			return lang
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.MatchLanguage(accept)
	}
	return i18n.DefaultLanguage()
}

// GetLang returns the UI language of the request.
func GetLang(r *http.Request) string {
	return LangFromContext(r.Context())
}

// LangFromContext returns the UI language stored by Language, or the default.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLanguage()
}
