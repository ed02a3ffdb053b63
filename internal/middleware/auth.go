// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/auth"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyUser  ContextKey = "user"
	ContextKeyToken ContextKey = "token"
)

// RouteLogin is where unauthenticated requests are sent.
const RouteLogin = "/login"

// Restorer reconciles the stored token into a session state.
type Restorer interface {
	Restore(ctx context.Context) auth.State
}

// Auth reconciles the session on every request. An unauthenticated request
// is redirected to the login page, or answered with 401 when it asks for
// JSON. An authenticated request carries the identity and the bearer token
// in its context.
func Auth(rec Restorer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := rec.Restore(r.Context())
			if !st.Authenticated() {
				if wantsJSON(r) {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, st.User)
			ctx = context.WithValue(ctx, ContextKeyToken, st.Token)
			ctx = apiclient.ContextWithToken(ctx, st.Token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the identity of the signed-in user, or nil.
func GetUser(r *http.Request) *auth.Identity {
	return UserFromContext(r.Context())
}

// UserFromContext returns the identity stored by Auth, or nil.
func UserFromContext(ctx context.Context) *auth.Identity {
	user, _ := ctx.Value(ContextKeyUser).(*auth.Identity)
	return user
}

// GetUserID returns the signed-in user's id, or "".
func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

// RequireAdmin allows only administrators through. Other signed-in users get
// 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			if !user.IsAdmin() {
				slog.WarnContext(r.Context(), "access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"user_id", user.ID,
					"user_role", string(user.Role),
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, i18n.T(GetLang(r), "error.forbidden"), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestPath stores the request path in the context for the log handler.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestPath(r.Context(), r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSONError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
